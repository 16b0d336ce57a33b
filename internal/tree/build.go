package tree

import (
	"errors"
	"fmt"
	"strconv"

	"tinymerge/internal/diagnostic"
)

// Diagnostic codes recorded while accepting visits.
const (
	CodeDroppedEntry       = "dropped_entry"
	CodeSourceNameConflict = "source_name_conflict"
)

var errNoHeader = errors.New("visit before header")

// visitState tracks the element being built while a visit is accepted.
// Elements flagged as new are not yet attached to their owner; they are
// committed when the next sibling (or End) arrives, which is the point
// where their source-namespace name is known.
type visitState struct {
	active bool
	keyNs  int
	nsMap  []int

	cls    *ClassEntry
	clsNew bool
	fld    *FieldEntry
	fldNew bool
	mth    *MethodEntry
	mthNew bool
	par    *ParamEntry
	parNew bool
	lv     *LocalVarEntry
	lvNew  bool

	cur Kind
}

// Header implements Visitor. The first header fixes the tree's source
// namespace; later headers may be keyed by any namespace the tree declares,
// and their unknown destination namespaces are appended.
func (t *Tree) Header(srcNs string, dstNs []string) error {
	if srcNs == "" {
		return errors.New("header without source namespace")
	}

	if t.v.active {
		if err := t.closeClass(); err != nil {
			return err
		}
	}

	if t.srcNs == "" {
		t.srcNs = srcNs
	}

	key, ok := t.LookupNamespace(srcNs)
	if !ok {
		return diagnostic.NewNamespaceError("visit", srcNs, t.Namespaces())
	}

	nsMap := make([]int, len(dstNs))

	for i, ns := range dstNs {
		switch id, found := t.LookupNamespace(ns); {
		case ns == srcNs:
			nsMap[i] = key
		case found:
			nsMap[i] = id
		default:
			t.dstNs = append(t.dstNs, ns)
			nsMap[i] = len(t.dstNs) - 1
		}
	}

	if key != SrcNamespace {
		// Entries are matched by destination name for the rest of the visit.
		t.indexByDst = true
	}

	t.v = visitState{active: true, keyNs: key, nsMap: nsMap}

	return nil
}

// Property implements Visitor.
func (t *Tree) Property(key, value string) error {
	if t.mode == KeepExisting {
		if _, ok := t.PropertyValue(key); ok {
			return nil
		}
	}

	t.SetProperty(key, value)

	return nil
}

// Class implements Visitor.
func (t *Tree) Class(name string) error {
	if !t.v.active {
		return errNoHeader
	}

	if err := t.closeClass(); err != nil {
		return err
	}

	if name == "" {
		return errors.New("class without a name")
	}

	c := t.ClassByName(t.v.keyNs, name)
	if c != nil {
		if t.mode == Strict {
			return &diagnostic.UniquenessError{Kind: KindClass.String(), Key: name}
		}

		t.v.cls, t.v.clsNew = c, false
	} else {
		c = &ClassEntry{tree: t}
		t.setKey(&c.element, name)
		t.v.cls, t.v.clsNew = c, true
	}

	t.v.cur = KindClass

	return nil
}

// Field implements Visitor.
func (t *Tree) Field(name, desc string) error {
	if err := t.openMember(KindField); err != nil {
		return err
	}

	cls := t.v.cls

	f := cls.FieldByName(t.v.keyNs, name, desc)
	if f != nil {
		if t.mode == Strict {
			return &diagnostic.UniquenessError{Kind: KindField.String(), Owner: t.ownerKey(), Key: name + ":" + desc}
		}

		t.v.fld, t.v.fldNew = f, false
	} else {
		f = &FieldEntry{owner: cls, desc: t.srcDesc(desc)}
		t.setKey(&f.element, name)
		t.v.fld, t.v.fldNew = f, true
	}

	t.v.cur = KindField

	return nil
}

// Method implements Visitor.
func (t *Tree) Method(name, desc string) error {
	if err := t.openMember(KindMethod); err != nil {
		return err
	}

	cls := t.v.cls

	m := cls.MethodByName(t.v.keyNs, name, desc)
	if m != nil {
		if t.mode == Strict {
			return &diagnostic.UniquenessError{Kind: KindMethod.String(), Owner: t.ownerKey(), Key: name + desc}
		}

		t.v.mth, t.v.mthNew = m, false
	} else {
		m = &MethodEntry{owner: cls, desc: t.srcDesc(desc)}
		t.setKey(&m.element, name)
		t.v.mth, t.v.mthNew = m, true
	}

	t.v.cur = KindMethod

	return nil
}

// Param implements Visitor.
func (t *Tree) Param(lvIndex int, name string) error {
	if err := t.openMethodChild(KindParam); err != nil {
		return err
	}

	m := t.v.mth

	p := t.findParam(m, lvIndex, name)
	if p != nil {
		if t.mode == Strict {
			return &diagnostic.UniquenessError{Kind: KindParam.String(), Owner: m.Key(), Key: paramString(m, lvIndex, name)}
		}

		t.v.par, t.v.parNew = p, false
	} else {
		p = &ParamEntry{owner: m, lvIndex: lvIndex}
		if name != "" {
			t.setKey(&p.element, name)
		}

		t.v.par, t.v.parNew = p, true
	}

	t.v.cur = KindParam

	return nil
}

// LocalVar implements Visitor.
func (t *Tree) LocalVar(lvIndex, startOffset, lvtRowIndex int, name string) error {
	if err := t.openMethodChild(KindLocalVar); err != nil {
		return err
	}

	m := t.v.mth

	lv := m.LocalVar(lvIndex, startOffset, lvtRowIndex)
	if lv != nil {
		if t.mode == Strict {
			return &diagnostic.UniquenessError{
				Kind:  KindLocalVar.String(),
				Owner: m.Key(),
				Key:   strconv.Itoa(lvIndex) + "@" + strconv.Itoa(startOffset),
			}
		}

		t.v.lv, t.v.lvNew = lv, false
	} else {
		lv = &LocalVarEntry{owner: m, lvIndex: lvIndex, startOffset: startOffset, lvtRowIndex: lvtRowIndex}
		if name != "" {
			t.setKey(&lv.element, name)
		}

		t.v.lv, t.v.lvNew = lv, true
	}

	t.v.cur = KindLocalVar

	return nil
}

// DstName implements Visitor.
func (t *Tree) DstName(kind Kind, ns int, name string) error {
	e, err := t.current(kind)
	if err != nil {
		return err
	}

	if ns < 0 || ns >= len(t.v.nsMap) {
		return fmt.Errorf("%s name for namespace %d, header declared %d", kind, ns, len(t.v.nsMap))
	}

	if name == "" {
		return nil
	}

	target := t.v.nsMap[ns]
	if target == SrcNamespace {
		switch {
		case e.src == "":
			e.src = name
		case e.src != name:
			t.diags.AddWarning(CodeSourceNameConflict,
				fmt.Sprintf("incoming %s name %q differs from %q", t.srcNs, name, e.src), "visit", e.src)
		}

		return nil
	}

	if existing := e.DstName(target); existing != "" && existing != name && t.mode == KeepExisting {
		return nil
	}

	if kind == KindClass {
		t.v.cls.SetDstName(target, name)
	} else {
		e.setDst(target, name)
	}

	return nil
}

// Comment implements Visitor.
func (t *Tree) Comment(kind Kind, comment string) error {
	e, err := t.current(kind)
	if err != nil {
		return err
	}

	if e.comment != "" && t.mode == KeepExisting {
		return nil
	}

	e.comment = comment

	return nil
}

// End implements Visitor.
func (t *Tree) End() error {
	if !t.v.active {
		return errNoHeader
	}

	err := t.closeClass()
	t.v = visitState{}

	return err
}

func (t *Tree) current(kind Kind) (*element, error) {
	if kind != t.v.cur || kind == 0 {
		return nil, fmt.Errorf("%s names visited while no %s is open", kind, kind)
	}

	switch kind {
	case KindClass:
		return &t.v.cls.element, nil
	case KindField:
		return &t.v.fld.element, nil
	case KindMethod:
		return &t.v.mth.element, nil
	case KindParam:
		return &t.v.par.element, nil
	case KindLocalVar:
		return &t.v.lv.element, nil
	default:
		return nil, fmt.Errorf("unknown element kind %d", int(kind))
	}
}

// setKey records name in the namespace incoming visits are keyed by.
func (t *Tree) setKey(e *element, name string) {
	if t.v.keyNs == SrcNamespace {
		e.src = name
	} else {
		e.setDst(t.v.keyNs, name)
	}
}

func (t *Tree) srcDesc(desc string) string {
	if t.v.keyNs == SrcNamespace {
		return desc
	}

	return t.MapDesc(desc, t.v.keyNs, SrcNamespace)
}

func (t *Tree) ownerKey() string {
	if t.v.cls.src != "" {
		return t.v.cls.src
	}

	return t.v.cls.DstName(t.v.keyNs)
}

func (t *Tree) findParam(m *MethodEntry, lvIndex int, name string) *ParamEntry {
	if lvIndex >= 0 || t.v.keyNs == SrcNamespace {
		return m.Param(lvIndex, name)
	}

	for _, p := range m.params {
		if p.DstName(t.v.keyNs) == name {
			return p
		}
	}

	return nil
}

func (t *Tree) openMember(kind Kind) error {
	if !t.v.active {
		return errNoHeader
	}

	if t.v.cls == nil {
		return fmt.Errorf("%s visited outside a class", kind)
	}

	return t.closeMember()
}

func (t *Tree) openMethodChild(kind Kind) error {
	if !t.v.active {
		return errNoHeader
	}

	if t.v.mth == nil {
		return fmt.Errorf("%s visited outside a method", kind)
	}

	t.closeMethodChild()

	return nil
}

func (t *Tree) closeMethodChild() {
	if t.v.parNew {
		t.v.mth.addParam(t.v.par)
	}

	if t.v.lvNew {
		t.v.mth.addLocalVar(t.v.lv)
	}

	t.v.par, t.v.parNew = nil, false
	t.v.lv, t.v.lvNew = nil, false
	t.v.cur = 0
}

func (t *Tree) closeMember() error {
	if t.v.mth != nil {
		t.closeMethodChild()
	}

	cls := t.v.cls

	var err error

	switch {
	case t.v.fldNew:
		err = t.commitField(cls, t.v.fld)
	case t.v.mthNew:
		err = t.commitMethod(cls, t.v.mth)
	}

	t.v.fld, t.v.fldNew = nil, false
	t.v.mth, t.v.mthNew = nil, false
	t.v.cur = 0

	return err
}

func (t *Tree) closeClass() error {
	if t.v.cls == nil {
		return nil
	}

	err := t.closeMember()

	if err == nil && t.v.clsNew {
		err = t.commitClass(t.v.cls)
	}

	t.v.cls, t.v.clsNew = nil, false
	t.v.cur = 0

	return err
}

func (t *Tree) commitClass(c *ClassEntry) error {
	if c.src == "" {
		t.drop(KindClass, c.DstName(t.v.keyNs))

		return nil
	}

	existing := t.classIdx[c.src]
	if existing == nil {
		t.attachClass(c)

		return nil
	}

	if t.mode == Strict {
		return &diagnostic.UniquenessError{Kind: KindClass.String(), Key: c.src}
	}

	return t.mergeClass(existing, c)
}

// Members of a class that is itself dropped are not reported separately.
func (t *Tree) commitField(cls *ClassEntry, f *FieldEntry) error {
	if f.src == "" {
		if cls.src != "" {
			t.drop(KindField, t.ownerKey()+"."+f.DstName(t.v.keyNs)+":"+f.desc)
		}

		return nil
	}

	existing := cls.Field(f.src, f.desc)
	if existing == nil {
		cls.addField(f)

		return nil
	}

	if t.mode == Strict {
		return &diagnostic.UniquenessError{Kind: KindField.String(), Owner: cls.src, Key: f.src + ":" + f.desc}
	}

	t.mergeElement(&existing.element, &f.element)

	return nil
}

func (t *Tree) commitMethod(cls *ClassEntry, m *MethodEntry) error {
	if m.src == "" {
		if cls.src != "" {
			t.drop(KindMethod, t.ownerKey()+"."+m.DstName(t.v.keyNs)+m.desc)
		}

		return nil
	}

	existing := cls.Method(m.src, m.desc)
	if existing == nil {
		cls.addMethod(m)

		return nil
	}

	if t.mode == Strict {
		return &diagnostic.UniquenessError{Kind: KindMethod.String(), Owner: cls.src, Key: m.src + m.desc}
	}

	t.mergeMethod(existing, m)

	return nil
}

func (t *Tree) mergeClass(dst, src *ClassEntry) error {
	for ns, name := range src.dst {
		if name != "" && (dst.DstName(ns) == "" || t.mode == Overwrite) {
			dst.SetDstName(ns, name)
		}
	}

	if src.comment != "" && (dst.comment == "" || t.mode == Overwrite) {
		dst.comment = src.comment
	}

	for _, f := range src.fields {
		if existing := dst.Field(f.src, f.desc); existing != nil {
			t.mergeElement(&existing.element, &f.element)
		} else {
			dst.addField(f)
		}
	}

	for _, m := range src.methods {
		if existing := dst.Method(m.src, m.desc); existing != nil {
			t.mergeMethod(existing, m)
		} else {
			dst.addMethod(m)
		}
	}

	return nil
}

func (t *Tree) mergeMethod(dst, src *MethodEntry) {
	t.mergeElement(&dst.element, &src.element)

	for _, p := range src.params {
		if existing := dst.Param(p.lvIndex, p.src); existing != nil {
			t.mergeElement(&existing.element, &p.element)
		} else {
			dst.addParam(p)
		}
	}

	for _, lv := range src.vars {
		if existing := dst.LocalVar(lv.lvIndex, lv.startOffset, lv.lvtRowIndex); existing != nil {
			t.mergeElement(&existing.element, &lv.element)
		} else {
			dst.addLocalVar(lv)
		}
	}
}

func (t *Tree) mergeElement(dst, src *element) {
	if dst.src == "" {
		dst.src = src.src
	}

	for ns, name := range src.dst {
		if name != "" && (dst.DstName(ns) == "" || t.mode == Overwrite) {
			dst.setDst(ns, name)
		}
	}

	if src.comment != "" && (dst.comment == "" || t.mode == Overwrite) {
		dst.comment = src.comment
	}
}

func (t *Tree) drop(kind Kind, key string) {
	t.diags.AddInfo(CodeDroppedEntry,
		fmt.Sprintf("%s has no name in source namespace %q", kind, t.srcNs), "visit", key)
}
