package tree

import (
	"slices"

	"tinymerge/internal/common"
	"tinymerge/internal/diagnostic"
)

// SrcNamespace is the namespace id of a tree's source namespace. Destination
// namespaces are numbered from 0 in declaration order.
const SrcNamespace = -1

// MergeMode decides how visits into a tree treat entries that already exist.
type MergeMode int

const (
	// Strict rejects a second entry with an existing key.
	Strict MergeMode = iota
	// KeepExisting unifies entries; names already set are kept.
	KeepExisting
	// Overwrite unifies entries; incoming names replace existing ones.
	Overwrite
)

// String returns a human-readable mode name.
func (m MergeMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case KeepExisting:
		return "keep-existing"
	case Overwrite:
		return "overwrite"
	default:
		return common.UnknownStr
	}
}

// Tree is an in-memory mapping tree.
type Tree struct {
	srcNs string
	dstNs []string
	props []Property

	classes  []*ClassEntry
	classIdx map[string]*ClassEntry

	indexByDst bool
	dstIdx     map[int]map[string]*ClassEntry

	mode  MergeMode
	diags diagnostic.Diagnostics
	v     visitState
}

// Option configures a Tree.
type Option func(*Tree)

// WithMergeMode selects how repeated entries are treated while visiting.
func WithMergeMode(m MergeMode) Option {
	return func(t *Tree) { t.mode = m }
}

// WithNamespaces declares the namespaces of an empty tree.
func WithNamespaces(src string, dst ...string) Option {
	return func(t *Tree) {
		t.srcNs = src
		t.dstNs = withoutNs(common.Dedup(slices.Clone(dst)), src)
	}
}

// New creates an empty tree.
func New(opts ...Option) *Tree {
	t := &Tree{
		classIdx: make(map[string]*ClassEntry),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Mode returns the merge mode used for incoming visits.
func (t *Tree) Mode() MergeMode { return t.mode }

// SrcNamespace returns the source namespace name.
func (t *Tree) SrcNamespace() string { return t.srcNs }

// DstNamespaces returns the destination namespace names in column order.
func (t *Tree) DstNamespaces() []string { return slices.Clone(t.dstNs) }

// Namespaces returns the source namespace followed by the destinations.
func (t *Tree) Namespaces() []string {
	if t.srcNs == "" {
		return slices.Clone(t.dstNs)
	}

	return append([]string{t.srcNs}, t.dstNs...)
}

// LookupNamespace resolves a namespace name to its id.
func (t *Tree) LookupNamespace(name string) (int, bool) {
	if name == "" {
		return 0, false
	}

	if name == t.srcNs {
		return SrcNamespace, true
	}

	if i := common.IndexOf(t.dstNs, name); i >= 0 {
		return i, true
	}

	return 0, false
}

// NamespaceID resolves a namespace name to its id. Asking for a namespace the
// tree never declared is a programming error and panics with a
// *diagnostic.NamespaceError; use LookupNamespace for untrusted input.
func (t *Tree) NamespaceID(name string) int {
	id, ok := t.LookupNamespace(name)
	if !ok {
		panic(diagnostic.NewNamespaceError("namespace lookup", name, t.Namespaces()))
	}

	return id
}

// NamespaceName returns the name of namespace id.
func (t *Tree) NamespaceName(id int) string {
	if id == SrcNamespace {
		return t.srcNs
	}

	return t.dstNs[id]
}

// Properties returns the header properties in declaration order.
func (t *Tree) Properties() []Property { return slices.Clone(t.props) }

// PropertyValue returns the value of key and whether it is present.
func (t *Tree) PropertyValue(key string) (string, bool) {
	for _, p := range t.props {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// SetProperty adds key or replaces its value in place.
func (t *Tree) SetProperty(key, value string) {
	for i := range t.props {
		if t.props[i].Key == key {
			t.props[i].Value = value

			return
		}
	}

	t.props = append(t.props, Property{Key: key, Value: value})
}

// Classes returns the classes in insertion order.
func (t *Tree) Classes() []*ClassEntry { return t.classes }

// Len returns the number of classes.
func (t *Tree) Len() int { return len(t.classes) }

// ClassBySrc returns the class with the given source name, or nil.
func (t *Tree) ClassBySrc(srcName string) *ClassEntry { return t.classIdx[srcName] }

// ClassByName returns the class named name in namespace ns, or nil.
func (t *Tree) ClassByName(ns int, name string) *ClassEntry {
	if ns == SrcNamespace {
		return t.classIdx[name]
	}

	if !t.indexByDst {
		for _, c := range t.classes {
			if c.DstName(ns) == name {
				return c
			}
		}

		return nil
	}

	return t.dstIndex(ns)[name]
}

// SetIndexByDstNames enables or drops the destination-name index. The index
// is built per namespace on first lookup.
func (t *Tree) SetIndexByDstNames(enabled bool) {
	t.indexByDst = enabled
	t.dstIdx = nil
}

// IndexByDstNames reports whether destination lookups are indexed.
func (t *Tree) IndexByDstNames() bool { return t.indexByDst }

func (t *Tree) dstIndex(ns int) map[string]*ClassEntry {
	if idx, ok := t.dstIdx[ns]; ok {
		return idx
	}

	if t.dstIdx == nil {
		t.dstIdx = make(map[int]map[string]*ClassEntry)
	}

	idx := make(map[string]*ClassEntry, len(t.classes))

	for _, c := range t.classes {
		if name := c.DstName(ns); name != "" {
			if _, dup := idx[name]; !dup {
				idx[name] = c
			}
		}
	}

	t.dstIdx[ns] = idx

	return idx
}

func (t *Tree) reindexClass(c *ClassEntry, ns int, old, name string) {
	if !c.attached || t.dstIdx == nil {
		return
	}

	idx, ok := t.dstIdx[ns]
	if !ok {
		return
	}

	if old != "" && idx[old] == c {
		delete(idx, old)
	}

	if name != "" {
		if _, taken := idx[name]; !taken {
			idx[name] = c
		}
	}
}

// MapClassName maps a class name from namespace from to namespace to. Names
// without a class entry, or whose entry has no name in to, map to themselves.
func (t *Tree) MapClassName(name string, from, to int) string {
	if from == to {
		return name
	}

	c := t.ClassByName(from, name)
	if c == nil {
		return name
	}

	if mapped := c.Name(to); mapped != "" {
		return mapped
	}

	return name
}

// Diagnostics returns the notices recorded while visits were accepted.
func (t *Tree) Diagnostics() *diagnostic.Diagnostics { return &t.diags }

// Copy returns a deep copy that uses the given merge mode for later visits.
func (t *Tree) Copy(mode MergeMode) (*Tree, error) {
	out := New(WithMergeMode(mode))

	if err := t.Accept(out); err != nil {
		return nil, err
	}

	return out, nil
}

// NewClass adds a class with the given source name.
func (t *Tree) NewClass(srcName string) (*ClassEntry, error) {
	if _, ok := t.classIdx[srcName]; ok {
		return nil, &diagnostic.UniquenessError{Kind: KindClass.String(), Key: srcName}
	}

	c := &ClassEntry{tree: t}
	c.src = srcName
	t.attachClass(c)

	return c, nil
}

func (t *Tree) attachClass(c *ClassEntry) {
	c.tree = t
	c.attached = true
	t.classes = append(t.classes, c)
	t.classIdx[c.src] = c

	for ns, idx := range t.dstIdx {
		if name := c.DstName(ns); name != "" {
			if _, taken := idx[name]; !taken {
				idx[name] = c
			}
		}
	}
}

// NewField adds a field to c.
func (c *ClassEntry) NewField(srcName, srcDesc string) (*FieldEntry, error) {
	if _, ok := c.fieldIdx[memberKey{srcName, srcDesc}]; ok {
		return nil, &diagnostic.UniquenessError{Kind: KindField.String(), Owner: c.src, Key: srcName + ":" + srcDesc}
	}

	f := &FieldEntry{desc: srcDesc}
	f.src = srcName
	c.addField(f)

	return f, nil
}

// NewMethod adds a method to c.
func (c *ClassEntry) NewMethod(srcName, srcDesc string) (*MethodEntry, error) {
	if _, ok := c.methodIdx[memberKey{srcName, srcDesc}]; ok {
		return nil, &diagnostic.UniquenessError{Kind: KindMethod.String(), Owner: c.src, Key: srcName + srcDesc}
	}

	m := &MethodEntry{desc: srcDesc}
	m.src = srcName
	c.addMethod(m)

	return m, nil
}

// NewParam adds a parameter to m.
func (m *MethodEntry) NewParam(lvIndex int, srcName string) (*ParamEntry, error) {
	if m.Param(lvIndex, srcName) != nil {
		return nil, &diagnostic.UniquenessError{Kind: KindParam.String(), Owner: m.Key(), Key: paramString(m, lvIndex, srcName)}
	}

	p := &ParamEntry{lvIndex: lvIndex}
	p.src = srcName
	m.addParam(p)

	return p, nil
}

// NewLocalVar adds a local variable to m.
func (m *MethodEntry) NewLocalVar(lvIndex, startOffset, lvtRowIndex int, srcName string) (*LocalVarEntry, error) {
	if m.LocalVar(lvIndex, startOffset, lvtRowIndex) != nil {
		return nil, &diagnostic.UniquenessError{Kind: KindLocalVar.String(), Owner: m.Key(), Key: paramString(m, lvIndex, srcName)}
	}

	v := &LocalVarEntry{lvIndex: lvIndex, startOffset: startOffset, lvtRowIndex: lvtRowIndex}
	v.src = srcName
	m.addLocalVar(v)

	return v, nil
}

func withoutNs(list []string, ns string) []string {
	if i := common.IndexOf(list, ns); i >= 0 {
		return slices.Delete(list, i, i+1)
	}

	return list
}
