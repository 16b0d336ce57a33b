package nsop

import (
	"errors"
	"fmt"
	"slices"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// DstReorder is a visitor adapter that emits the destination namespaces in
// a given order. Destination namespaces left out of the order are dropped.
type DstReorder struct {
	tree.Visitor

	order []string
	cols  []int // incoming column -> output column, -1 when dropped
}

// NewDstReorder returns an adapter forwarding to next with the destination
// columns arranged as order.
func NewDstReorder(next tree.Visitor, order []string) *DstReorder {
	return &DstReorder{Visitor: next, order: order}
}

// Header implements tree.Visitor.
func (r *DstReorder) Header(srcNs string, dstNs []string) error {
	r.cols = make([]int, len(dstNs))
	for i := range r.cols {
		r.cols[i] = -1
	}

	for out, ns := range r.order {
		in := slices.Index(dstNs, ns)
		if in < 0 {
			return diagnostic.NewNamespaceError("reorder", ns, append([]string{srcNs}, dstNs...))
		}

		r.cols[in] = out
	}

	return r.Visitor.Header(srcNs, r.order)
}

// DstName implements tree.Visitor.
func (r *DstReorder) DstName(kind tree.Kind, ns int, name string) error {
	if ns < 0 || ns >= len(r.cols) {
		return errNamespaceIndex(kind, ns)
	}

	if out := r.cols[ns]; out >= 0 {
		return r.Visitor.DstName(kind, out, name)
	}

	return nil
}

// Reorder returns a copy of t whose namespaces are exactly namespaces: the
// first becomes the source namespace (switching if needed, with the drops
// Switch reports), the rest are the destination columns in order.
func Reorder(t *tree.Tree, namespaces ...string) (*tree.Tree, *diagnostic.Diagnostics, error) {
	if len(namespaces) == 0 {
		return nil, nil, errors.New("reorder: no namespaces given")
	}

	if dup := firstDuplicate(namespaces); dup != "" {
		return nil, nil, fmt.Errorf("reorder: namespace %q listed twice", dup)
	}

	src := t
	diags := &diagnostic.Diagnostics{}

	if namespaces[0] != t.SrcNamespace() {
		switched, switchDiags, err := Switch(t, namespaces[0])
		if err != nil {
			return nil, nil, err
		}

		src, diags = switched, switchDiags
	}

	out := tree.New(tree.WithMergeMode(tree.Strict))

	if err := src.Accept(NewDstReorder(out, namespaces[1:])); err != nil {
		return nil, nil, fmt.Errorf("reorder: %w", err)
	}

	return out, diags, nil
}

func firstDuplicate(list []string) string {
	seen := make(map[string]struct{}, len(list))

	for _, s := range list {
		if _, ok := seen[s]; ok {
			return s
		}

		seen[s] = struct{}{}
	}

	return ""
}
