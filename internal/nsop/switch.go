package nsop

import (
	"fmt"
	"slices"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// CodeDroppedEntry marks entries a switch drops because they have no name
// in the new source namespace.
const CodeDroppedEntry = tree.CodeDroppedEntry

// DescMapper rewrites class names inside descriptors between namespaces of
// the visited tree. *tree.Tree implements it.
type DescMapper interface {
	MapDesc(desc string, from, to int) string
}

// SourceSwitch is a visitor adapter that makes one destination namespace the
// source. The old source takes the new source's column.
type SourceSwitch struct {
	next   tree.Visitor
	newSrc string
	descs  DescMapper

	col      int // incoming column of newSrc; tree.SrcNamespace for identity
	dstCount int
	cur      elem
	owner    string

	skipClass  bool
	skipMember bool

	diags diagnostic.Diagnostics
}

// NewSourceSwitch returns an adapter forwarding to next with newSrc as the
// source namespace. descs maps member descriptors of the visited tree from
// its source namespace to newSrc; when nil, descriptors are forwarded as is.
func NewSourceSwitch(next tree.Visitor, newSrc string, descs DescMapper) *SourceSwitch {
	return &SourceSwitch{next: next, newSrc: newSrc, descs: descs}
}

// Diagnostics returns the entries dropped so far.
func (s *SourceSwitch) Diagnostics() *diagnostic.Diagnostics { return &s.diags }

// Header implements tree.Visitor.
func (s *SourceSwitch) Header(srcNs string, dstNs []string) error {
	s.cur = elem{}
	s.dstCount = len(dstNs)

	if srcNs == s.newSrc {
		s.col = tree.SrcNamespace

		return s.next.Header(srcNs, dstNs)
	}

	s.col = slices.Index(dstNs, s.newSrc)
	if s.col < 0 {
		return diagnostic.NewNamespaceError("switch", s.newSrc, append([]string{srcNs}, dstNs...))
	}

	out := slices.Clone(dstNs)
	out[s.col] = srcNs

	return s.next.Header(s.newSrc, out)
}

// Property implements tree.Visitor.
func (s *SourceSwitch) Property(key, value string) error {
	return s.next.Property(key, value)
}

// Class implements tree.Visitor.
func (s *SourceSwitch) Class(srcName string) error {
	if s.identity() {
		return s.next.Class(srcName)
	}

	if err := s.flush(); err != nil {
		return err
	}

	s.skipClass, s.skipMember = false, false
	s.owner = srcName
	s.cur.start(tree.KindClass, srcName, s.dstCount)

	return nil
}

// Field implements tree.Visitor.
func (s *SourceSwitch) Field(srcName, srcDesc string) error {
	if s.identity() {
		return s.next.Field(srcName, srcDesc)
	}

	if err := s.flush(); err != nil {
		return err
	}

	s.skipMember = false
	s.cur.start(tree.KindField, srcName, s.dstCount)
	s.cur.desc = srcDesc

	return nil
}

// Method implements tree.Visitor.
func (s *SourceSwitch) Method(srcName, srcDesc string) error {
	if s.identity() {
		return s.next.Method(srcName, srcDesc)
	}

	if err := s.flush(); err != nil {
		return err
	}

	s.skipMember = false
	s.cur.start(tree.KindMethod, srcName, s.dstCount)
	s.cur.desc = srcDesc

	return nil
}

// Param implements tree.Visitor.
func (s *SourceSwitch) Param(lvIndex int, srcName string) error {
	if s.identity() {
		return s.next.Param(lvIndex, srcName)
	}

	if err := s.flush(); err != nil {
		return err
	}

	s.cur.start(tree.KindParam, srcName, s.dstCount)
	s.cur.lvIndex = lvIndex

	return nil
}

// LocalVar implements tree.Visitor.
func (s *SourceSwitch) LocalVar(lvIndex, startOffset, lvtRowIndex int, srcName string) error {
	if s.identity() {
		return s.next.LocalVar(lvIndex, startOffset, lvtRowIndex, srcName)
	}

	if err := s.flush(); err != nil {
		return err
	}

	s.cur.start(tree.KindLocalVar, srcName, s.dstCount)
	s.cur.lvIndex, s.cur.startOffset, s.cur.lvtRowIndex = lvIndex, startOffset, lvtRowIndex

	return nil
}

// DstName implements tree.Visitor.
func (s *SourceSwitch) DstName(kind tree.Kind, ns int, name string) error {
	if s.identity() {
		return s.next.DstName(kind, ns, name)
	}

	return s.cur.setName(kind, ns, name)
}

// Comment implements tree.Visitor.
func (s *SourceSwitch) Comment(kind tree.Kind, comment string) error {
	if s.identity() {
		return s.next.Comment(kind, comment)
	}

	return s.cur.setComment(kind, comment)
}

// End implements tree.Visitor.
func (s *SourceSwitch) End() error {
	if err := s.flush(); err != nil {
		return err
	}

	return s.next.End()
}

func (s *SourceSwitch) identity() bool { return s.col == tree.SrcNamespace }

func (s *SourceSwitch) flush() error {
	e := &s.cur
	if !e.open {
		return nil
	}

	e.open = false

	newName := e.names[s.col]

	switch e.kind {
	case tree.KindClass:
		if newName == "" {
			s.skipClass = true
			s.drop(e.kind, e.src)

			return nil
		}
	case tree.KindField, tree.KindMethod:
		if s.skipClass {
			return nil
		}

		if newName == "" {
			s.skipMember = true
			s.drop(e.kind, s.owner+"."+e.src+":"+e.desc)

			return nil
		}
	default:
		// Parameters and variables are keyed by slot, not by name.
		if s.skipClass || s.skipMember {
			return nil
		}
	}

	names := slices.Clone(e.names)
	names[s.col] = e.src

	desc := e.desc
	if desc != "" && s.descs != nil {
		desc = s.descs.MapDesc(desc, tree.SrcNamespace, s.col)
	}

	return e.forward(s.next, newName, desc, names)
}

func (s *SourceSwitch) drop(kind tree.Kind, key string) {
	s.diags.AddInfo(CodeDroppedEntry,
		fmt.Sprintf("%s has no name in namespace %q", kind, s.newSrc), "switch", key)
}

// Switch returns a copy of t whose source namespace is newSrc. The old
// source namespace takes newSrc's destination column and member descriptors
// are remapped. Entries without a newSrc name cannot be keyed and are
// dropped; each is reported as an info diagnostic. Switching to the current
// source namespace returns a plain copy.
func Switch(t *tree.Tree, newSrc string) (*tree.Tree, *diagnostic.Diagnostics, error) {
	if _, ok := t.LookupNamespace(newSrc); !ok {
		return nil, nil, diagnostic.NewNamespaceError("switch", newSrc, t.Namespaces())
	}

	out := tree.New(tree.WithMergeMode(tree.Strict))
	sw := NewSourceSwitch(out, newSrc, t)

	if err := t.Accept(sw); err != nil {
		return nil, nil, fmt.Errorf("switch to %s: %w", newSrc, err)
	}

	return out, sw.Diagnostics(), nil
}
