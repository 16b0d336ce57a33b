package tree

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind identifies an entry kind in the tree and in visitor calls.
type Kind int

const (
	_ Kind = iota // skip zero value, it marks "no element"

	KindClass    // class
	KindField    // field
	KindMethod   // method
	KindParam    // parameter
	KindLocalVar // local variable
)

// IsMember reports whether k is owned directly by a class.
func (k Kind) IsMember() bool {
	return k == KindField || k == KindMethod
}

// IsMethodChild reports whether k is owned by a method.
func (k Kind) IsMethodChild() bool {
	return k == KindParam || k == KindLocalVar
}
