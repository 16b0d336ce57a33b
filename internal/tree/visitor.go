package tree

// Visitor receives the content of a mapping tree, one call per row.
//
// Namespace arguments to DstName are indexes into the dst slice passed to
// Header. Names passed to DstName are never empty; unset names are simply
// not visited. DstName and Comment apply to the element most recently
// opened by Class, Field, Method, Param or LocalVar, and kind must match it.
type Visitor interface {
	Header(srcNs string, dstNs []string) error
	Property(key, value string) error
	Class(srcName string) error
	Field(srcName, srcDesc string) error
	Method(srcName, srcDesc string) error
	Param(lvIndex int, srcName string) error
	LocalVar(lvIndex, startOffset, lvtRowIndex int, srcName string) error
	DstName(kind Kind, ns int, name string) error
	Comment(kind Kind, comment string) error
	End() error
}

// Property is one header metadata entry.
type Property struct {
	Key   string
	Value string
}
