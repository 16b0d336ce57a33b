// Package tree provides the in-memory multi-namespace mapping tree.
//
// A Tree holds class entries keyed by their name in the source namespace.
// Each class owns fields and methods keyed by (source name, source
// descriptor); each method owns parameters and local variables. Every entry
// carries one name per destination namespace, where an empty name means
// "unset" rather than "same as the source name".
//
// # Visiting
//
// Trees are produced and consumed through the Visitor interface, which has
// one method per row kind. (*Tree).Accept pushes the whole tree through a
// visitor in a fixed order:
//
//	Header
//	Property*
//	for each class:
//	    Class, DstName*, Comment?
//	    for each field:  Field, DstName*, Comment?
//	    for each method: Method, DstName*, Comment?
//	        for each param:     Param, DstName*, Comment?
//	        for each local var: LocalVar, DstName*, Comment?
//	End
//
// A *Tree is itself a Visitor, so copying, reading and merging all reduce to
// "accept a visit". The MergeMode chosen at construction decides what
// happens when an incoming entry already exists: Strict fails with a
// uniqueness violation, KeepExisting keeps names already present and
// Overwrite lets incoming names win.
//
// # Lookup
//
// Classes are always indexed by source name. Lookups by destination name
// scan linearly unless SetIndexByDstNames(true) is called, after which a
// per-namespace index is built lazily on first use and kept current.
package tree
