// Package nsop rewrites the namespaces of a mapping tree.
//
// Each operation exists as a streaming tree.Visitor adapter that forwards a
// transformed visit to the next visitor, and as a function over a whole
// tree that returns a new tree:
//
//	Switch / NewSourceSwitch    make a destination namespace the source
//	Complete / NewCompleter     fill unset names from a fallback namespace
//	Reorder / NewDstReorder     permute or narrow the destination columns
//
// Adapters buffer the element being visited until its names are known, so
// the next visitor always sees fully formed rows.
package nsop
