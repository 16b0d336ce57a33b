package tree

import "strconv"

// element holds the per-namespace names shared by every entry kind.
type element struct {
	src     string
	dst     []string
	comment string
}

// SrcName returns the entry's name in the source namespace.
func (e *element) SrcName() string { return e.src }

// DstName returns the name in destination namespace ns, or "" when unset.
func (e *element) DstName(ns int) string {
	if ns < 0 || ns >= len(e.dst) {
		return ""
	}

	return e.dst[ns]
}

// Name returns the name in ns, which may be SrcNamespace.
func (e *element) Name(ns int) string {
	if ns == SrcNamespace {
		return e.src
	}

	return e.DstName(ns)
}

// Comment returns the entry's comment, or "".
func (e *element) Comment() string { return e.comment }

func (e *element) setDst(ns int, name string) {
	if ns >= len(e.dst) {
		grown := make([]string, ns+1)
		copy(grown, e.dst)
		e.dst = grown
	}

	e.dst[ns] = name
}

type memberKey struct {
	name string
	desc string
}

// ClassEntry is a class mapping. Nested classes are separate entries whose
// names join the enclosing path with '$'.
type ClassEntry struct {
	element

	tree     *Tree
	attached bool
	fields   []*FieldEntry
	methods  []*MethodEntry

	fieldIdx  map[memberKey]*FieldEntry
	methodIdx map[memberKey]*MethodEntry
}

// Tree returns the owning tree.
func (c *ClassEntry) Tree() *Tree { return c.tree }

// SetDstName sets the name in destination namespace ns, keeping the
// destination index current.
func (c *ClassEntry) SetDstName(ns int, name string) {
	old := c.DstName(ns)
	c.setDst(ns, name)

	if c.tree != nil {
		c.tree.reindexClass(c, ns, old, name)
	}
}

// SetComment replaces the class comment.
func (c *ClassEntry) SetComment(comment string) { c.comment = comment }

// Fields returns the fields in insertion order.
func (c *ClassEntry) Fields() []*FieldEntry { return c.fields }

// Methods returns the methods in insertion order.
func (c *ClassEntry) Methods() []*MethodEntry { return c.methods }

// Field returns the field keyed by source name and source descriptor.
// An empty desc matches the first field with that name.
func (c *ClassEntry) Field(srcName, srcDesc string) *FieldEntry {
	if srcDesc != "" {
		return c.fieldIdx[memberKey{srcName, srcDesc}]
	}

	for _, f := range c.fields {
		if f.src == srcName {
			return f
		}
	}

	return nil
}

// Method returns the method keyed by source name and source descriptor.
// An empty desc matches the first method with that name.
func (c *ClassEntry) Method(srcName, srcDesc string) *MethodEntry {
	if srcDesc != "" {
		return c.methodIdx[memberKey{srcName, srcDesc}]
	}

	for _, m := range c.methods {
		if m.src == srcName {
			return m
		}
	}

	return nil
}

// FieldByName finds a field by its name in ns and its descriptor in the
// same namespace. An empty desc matches any descriptor.
func (c *ClassEntry) FieldByName(ns int, name, desc string) *FieldEntry {
	if ns == SrcNamespace {
		return c.Field(name, desc)
	}

	for _, f := range c.fields {
		if f.DstName(ns) == name && (desc == "" || c.tree.MapDesc(f.desc, SrcNamespace, ns) == desc) {
			return f
		}
	}

	return nil
}

// MethodByName finds a method by its name in ns and its descriptor in the
// same namespace. An empty desc matches any descriptor.
func (c *ClassEntry) MethodByName(ns int, name, desc string) *MethodEntry {
	if ns == SrcNamespace {
		return c.Method(name, desc)
	}

	for _, m := range c.methods {
		if m.DstName(ns) == name && (desc == "" || c.tree.MapDesc(m.desc, SrcNamespace, ns) == desc) {
			return m
		}
	}

	return nil
}

func (c *ClassEntry) addField(f *FieldEntry) {
	if c.fieldIdx == nil {
		c.fieldIdx = make(map[memberKey]*FieldEntry)
	}

	f.owner = c
	c.fields = append(c.fields, f)
	c.fieldIdx[memberKey{f.src, f.desc}] = f
}

func (c *ClassEntry) addMethod(m *MethodEntry) {
	if c.methodIdx == nil {
		c.methodIdx = make(map[memberKey]*MethodEntry)
	}

	m.owner = c
	c.methods = append(c.methods, m)
	c.methodIdx[memberKey{m.src, m.desc}] = m
}

// FieldEntry is a field mapping.
type FieldEntry struct {
	element

	owner *ClassEntry
	desc  string
}

// Owner returns the declaring class.
func (f *FieldEntry) Owner() *ClassEntry { return f.owner }

// SrcDesc returns the field descriptor in the source namespace.
func (f *FieldEntry) SrcDesc() string { return f.desc }

// SetDstName sets the name in destination namespace ns.
func (f *FieldEntry) SetDstName(ns int, name string) { f.setDst(ns, name) }

// SetComment replaces the field comment.
func (f *FieldEntry) SetComment(comment string) { f.comment = comment }

// Key returns "owner.name:desc" for diagnostics.
func (f *FieldEntry) Key() string { return memberString(f.owner, f.src, f.desc) }

// MethodEntry is a method mapping.
type MethodEntry struct {
	element

	owner  *ClassEntry
	desc   string
	params []*ParamEntry
	vars   []*LocalVarEntry
}

// Owner returns the declaring class.
func (m *MethodEntry) Owner() *ClassEntry { return m.owner }

// SrcDesc returns the method descriptor in the source namespace.
func (m *MethodEntry) SrcDesc() string { return m.desc }

// SetDstName sets the name in destination namespace ns.
func (m *MethodEntry) SetDstName(ns int, name string) { m.setDst(ns, name) }

// SetComment replaces the method comment.
func (m *MethodEntry) SetComment(comment string) { m.comment = comment }

// Key returns "owner.name:desc" for diagnostics.
func (m *MethodEntry) Key() string { return memberString(m.owner, m.src, m.desc) }

// Params returns the parameters in insertion order.
func (m *MethodEntry) Params() []*ParamEntry { return m.params }

// LocalVars returns the local variables in insertion order.
func (m *MethodEntry) LocalVars() []*LocalVarEntry { return m.vars }

// Param returns the parameter with the given local variable index; when
// lvIndex is negative, the parameter is matched by source name instead.
func (m *MethodEntry) Param(lvIndex int, srcName string) *ParamEntry {
	for _, p := range m.params {
		if lvIndex >= 0 && p.lvIndex == lvIndex {
			return p
		}

		if lvIndex < 0 && srcName != "" && p.src == srcName {
			return p
		}
	}

	return nil
}

// LocalVar returns the local variable with the given slot coordinates.
func (m *MethodEntry) LocalVar(lvIndex, startOffset, lvtRowIndex int) *LocalVarEntry {
	for _, v := range m.vars {
		if v.lvIndex == lvIndex && v.startOffset == startOffset && v.lvtRowIndex == lvtRowIndex {
			return v
		}
	}

	return nil
}

func (m *MethodEntry) addParam(p *ParamEntry) {
	p.owner = m
	m.params = append(m.params, p)
}

func (m *MethodEntry) addLocalVar(v *LocalVarEntry) {
	v.owner = m
	m.vars = append(m.vars, v)
}

// ParamEntry is a method parameter mapping.
type ParamEntry struct {
	element

	owner   *MethodEntry
	lvIndex int
}

// Owner returns the declaring method.
func (p *ParamEntry) Owner() *MethodEntry { return p.owner }

// LvIndex returns the local variable slot, or -1 when unknown.
func (p *ParamEntry) LvIndex() int { return p.lvIndex }

// SetDstName sets the name in destination namespace ns.
func (p *ParamEntry) SetDstName(ns int, name string) { p.setDst(ns, name) }

// LocalVarEntry is a method local variable mapping.
type LocalVarEntry struct {
	element

	owner       *MethodEntry
	lvIndex     int
	startOffset int
	lvtRowIndex int
}

// Owner returns the declaring method.
func (v *LocalVarEntry) Owner() *MethodEntry { return v.owner }

// LvIndex returns the local variable slot.
func (v *LocalVarEntry) LvIndex() int { return v.lvIndex }

// StartOffset returns the bytecode offset where the variable becomes live.
func (v *LocalVarEntry) StartOffset() int { return v.startOffset }

// LvtRowIndex returns the row in the local variable table, or -1.
func (v *LocalVarEntry) LvtRowIndex() int { return v.lvtRowIndex }

// SetDstName sets the name in destination namespace ns.
func (v *LocalVarEntry) SetDstName(ns int, name string) { v.setDst(ns, name) }

func memberString(owner *ClassEntry, name, desc string) string {
	prefix := ""
	if owner != nil {
		prefix = owner.src + "."
	}

	if desc == "" {
		return prefix + name
	}

	return prefix + name + ":" + desc
}

func paramString(m *MethodEntry, lvIndex int, name string) string {
	if lvIndex >= 0 {
		return m.Key() + "#" + strconv.Itoa(lvIndex)
	}

	return m.Key() + "#" + name
}
