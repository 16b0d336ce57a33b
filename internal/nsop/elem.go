package nsop

import "tinymerge/internal/tree"

// elem is one buffered element: its opening call, names and comment.
type elem struct {
	open bool
	kind tree.Kind

	src  string
	desc string

	lvIndex     int
	startOffset int
	lvtRowIndex int

	names      []string
	comment    string
	hasComment bool
}

func (e *elem) start(kind tree.Kind, src string, dstCount int) {
	*e = elem{open: true, kind: kind, src: src, names: make([]string, dstCount)}
}

func (e *elem) setName(kind tree.Kind, ns int, name string) error {
	if !e.open || e.kind != kind {
		return errOutOfOrder(kind)
	}

	if ns < 0 || ns >= len(e.names) {
		return errNamespaceIndex(kind, ns)
	}

	e.names[ns] = name

	return nil
}

func (e *elem) setComment(kind tree.Kind, comment string) error {
	if !e.open || e.kind != kind {
		return errOutOfOrder(kind)
	}

	e.comment, e.hasComment = comment, true

	return nil
}

// forward opens the element on next under srcName, followed by the given
// destination names and the comment.
func (e *elem) forward(next tree.Visitor, srcName, desc string, names []string) error {
	var err error

	switch e.kind {
	case tree.KindClass:
		err = next.Class(srcName)
	case tree.KindField:
		err = next.Field(srcName, desc)
	case tree.KindMethod:
		err = next.Method(srcName, desc)
	case tree.KindParam:
		err = next.Param(e.lvIndex, srcName)
	case tree.KindLocalVar:
		err = next.LocalVar(e.lvIndex, e.startOffset, e.lvtRowIndex, srcName)
	}

	if err != nil {
		return err
	}

	for ns, name := range names {
		if name == "" {
			continue
		}

		if err := next.DstName(e.kind, ns, name); err != nil {
			return err
		}
	}

	if e.hasComment {
		return next.Comment(e.kind, e.comment)
	}

	return nil
}
