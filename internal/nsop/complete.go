package nsop

import (
	"fmt"
	"maps"
	"slices"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// Completer is a visitor adapter that fills unset names of target
// namespaces. Each target takes its fallback namespace's name, or the
// source name when the fallback is unset too. Names already present are
// never replaced. Fallbacks are read from the incoming names, so chains such
// as named<-hashed<-official do not cascade within one pass.
type Completer struct {
	next      tree.Visitor
	fallbacks map[string]string

	targets  []int // output column per target
	sources  []int // incoming column (or tree.SrcNamespace) per target
	inCount  int
	outCount int
	cur      elem
}

// NewCompleter returns an adapter forwarding to next. fallbacks maps target
// namespace to fallback namespace; targets missing from the visit are
// appended as new destination namespaces.
func NewCompleter(next tree.Visitor, fallbacks map[string]string) *Completer {
	return &Completer{next: next, fallbacks: fallbacks}
}

// Header implements tree.Visitor.
func (c *Completer) Header(srcNs string, dstNs []string) error {
	known := append([]string{srcNs}, dstNs...)
	out := slices.Clone(dstNs)

	c.targets, c.sources = c.targets[:0], c.sources[:0]
	c.inCount = len(dstNs)
	c.cur = elem{}

	// Sorted for a deterministic column order of appended targets.
	for _, target := range slices.Sorted(maps.Keys(c.fallbacks)) {
		fallback := c.fallbacks[target]

		if target == srcNs {
			return fmt.Errorf("complete: cannot complete source namespace %q", srcNs)
		}

		src := slices.Index(dstNs, fallback)
		if fallback == srcNs {
			src = tree.SrcNamespace
		} else if src < 0 {
			return diagnostic.NewNamespaceError("complete", fallback, known)
		}

		col := slices.Index(out, target)
		if col < 0 {
			out = append(out, target)
			col = len(out) - 1
		}

		c.targets = append(c.targets, col)
		c.sources = append(c.sources, src)
	}

	c.outCount = len(out)

	return c.next.Header(srcNs, out)
}

// Property implements tree.Visitor.
func (c *Completer) Property(key, value string) error {
	return c.next.Property(key, value)
}

// Class implements tree.Visitor.
func (c *Completer) Class(srcName string) error {
	return c.open(tree.KindClass, srcName)
}

// Field implements tree.Visitor.
func (c *Completer) Field(srcName, srcDesc string) error {
	if err := c.open(tree.KindField, srcName); err != nil {
		return err
	}

	c.cur.desc = srcDesc

	return nil
}

// Method implements tree.Visitor.
func (c *Completer) Method(srcName, srcDesc string) error {
	if err := c.open(tree.KindMethod, srcName); err != nil {
		return err
	}

	c.cur.desc = srcDesc

	return nil
}

// Param implements tree.Visitor.
func (c *Completer) Param(lvIndex int, srcName string) error {
	if err := c.open(tree.KindParam, srcName); err != nil {
		return err
	}

	c.cur.lvIndex = lvIndex

	return nil
}

// LocalVar implements tree.Visitor.
func (c *Completer) LocalVar(lvIndex, startOffset, lvtRowIndex int, srcName string) error {
	if err := c.open(tree.KindLocalVar, srcName); err != nil {
		return err
	}

	c.cur.lvIndex, c.cur.startOffset, c.cur.lvtRowIndex = lvIndex, startOffset, lvtRowIndex

	return nil
}

// DstName implements tree.Visitor.
func (c *Completer) DstName(kind tree.Kind, ns int, name string) error {
	if ns >= c.inCount {
		return errNamespaceIndex(kind, ns)
	}

	return c.cur.setName(kind, ns, name)
}

// Comment implements tree.Visitor.
func (c *Completer) Comment(kind tree.Kind, comment string) error {
	return c.cur.setComment(kind, comment)
}

// End implements tree.Visitor.
func (c *Completer) End() error {
	if err := c.flush(); err != nil {
		return err
	}

	return c.next.End()
}

func (c *Completer) open(kind tree.Kind, srcName string) error {
	if err := c.flush(); err != nil {
		return err
	}

	c.cur.start(kind, srcName, c.outCount)

	return nil
}

func (c *Completer) flush() error {
	e := &c.cur
	if !e.open {
		return nil
	}

	e.open = false

	names := slices.Clone(e.names)

	for i, col := range c.targets {
		if names[col] != "" {
			continue
		}

		name := e.src
		if src := c.sources[i]; src != tree.SrcNamespace && e.names[src] != "" {
			name = e.names[src]
		}

		names[col] = name
	}

	return e.forward(c.next, e.src, e.desc, names)
}

// Complete returns a copy of t where every entry lacking a name in a target
// namespace of fallbacks gets one. Complete is idempotent.
func Complete(t *tree.Tree, fallbacks map[string]string) (*tree.Tree, error) {
	out := tree.New(tree.WithMergeMode(tree.Strict))

	if err := t.Accept(NewCompleter(out, fallbacks)); err != nil {
		return nil, fmt.Errorf("complete: %w", err)
	}

	return out, nil
}
