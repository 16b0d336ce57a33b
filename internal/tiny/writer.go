package tiny

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tinymerge/internal/diagnostic"
	"tinymerge/internal/tree"
)

// row buffers one output row until all of its names have been visited.
type row struct {
	open   bool
	kind   tree.Kind
	prefix string
	names  []string
}

func (r *row) start(kind tree.Kind, prefix, src string, dstCount int) {
	r.open = true
	r.kind = kind
	r.prefix = prefix
	r.names = make([]string, 1+dstCount)
	r.names[0] = src
}

func (r *row) set(kind tree.Kind, ns int, name string) error {
	if !r.open || r.kind != kind {
		return fmt.Errorf("%s name without an open %s row", kind, kind)
	}

	if ns < 0 || ns >= len(r.names)-1 {
		return fmt.Errorf("%s name for namespace %d out of range", kind, ns)
	}

	r.names[1+ns] = name

	return nil
}

// V2Writer is a visitor that serializes into the Tiny v2 format.
type V2Writer struct {
	w        *bufio.Writer
	dstCount int
	escaped  bool
	row      row

	// The header line is held back until the first non-property event so
	// that a minor version property can still land in it.
	header  []string
	minor   string
	pending bool
	props   []tree.Property
}

// NewV2Writer returns a visitor writing Tiny v2 to w. Output is buffered
// and flushed by End.
func NewV2Writer(w io.Writer) *V2Writer {
	return &V2Writer{w: bufio.NewWriter(w)}
}

// Header implements tree.Visitor.
func (tw *V2Writer) Header(srcNs string, dstNs []string) error {
	tw.dstCount = len(dstNs)
	tw.escaped = false
	tw.row = row{}
	tw.header = append([]string{srcNs}, dstNs...)
	tw.minor = "0"
	tw.pending = true
	tw.props = nil

	return nil
}

// Property implements tree.Visitor.
func (tw *V2Writer) Property(key, value string) error {
	switch key {
	case MinorVersionProperty:
		if !tw.pending {
			return fmt.Errorf("%w: %s after the header was written", diagnostic.ErrFormat, key)
		}

		tw.minor = value

		return nil
	case EscapedNamesProperty:
		tw.escaped = true
	}

	if tw.pending {
		tw.props = append(tw.props, tree.Property{Key: key, Value: value})

		return nil
	}

	return tw.writeProperty(key, value)
}

func (tw *V2Writer) writeProperty(key, value string) error {
	line := "\t" + key
	if value != "" {
		line += "\t" + value
	}

	_, err := tw.w.WriteString(line + "\n")

	return err
}

// writeHeader emits the held back header line and properties.
func (tw *V2Writer) writeHeader() error {
	if !tw.pending {
		return nil
	}

	tw.pending = false

	if _, err := tw.w.WriteString("tiny\t2\t" + tw.minor + "\t" + strings.Join(tw.header, "\t") + "\n"); err != nil {
		return err
	}

	for _, p := range tw.props {
		if err := tw.writeProperty(p.Key, p.Value); err != nil {
			return err
		}
	}

	tw.props = nil

	return nil
}

// Class implements tree.Visitor.
func (tw *V2Writer) Class(srcName string) error {
	return tw.open(tree.KindClass, "c", srcName)
}

// Field implements tree.Visitor.
func (tw *V2Writer) Field(srcName, srcDesc string) error {
	return tw.open(tree.KindField, "\tf\t"+srcDesc, srcName)
}

// Method implements tree.Visitor.
func (tw *V2Writer) Method(srcName, srcDesc string) error {
	return tw.open(tree.KindMethod, "\tm\t"+srcDesc, srcName)
}

// Param implements tree.Visitor.
func (tw *V2Writer) Param(lvIndex int, srcName string) error {
	return tw.open(tree.KindParam, fmt.Sprintf("\t\tp\t%d", lvIndex), srcName)
}

// LocalVar implements tree.Visitor.
func (tw *V2Writer) LocalVar(lvIndex, startOffset, lvtRowIndex int, srcName string) error {
	return tw.open(tree.KindLocalVar, fmt.Sprintf("\t\tv\t%d\t%d\t%d", lvIndex, startOffset, lvtRowIndex), srcName)
}

// DstName implements tree.Visitor.
func (tw *V2Writer) DstName(kind tree.Kind, ns int, name string) error {
	return tw.row.set(kind, ns, name)
}

// Comment implements tree.Visitor.
func (tw *V2Writer) Comment(kind tree.Kind, comment string) error {
	if err := tw.writeHeader(); err != nil {
		return err
	}

	if err := tw.flush(); err != nil {
		return err
	}

	_, err := tw.w.WriteString(strings.Repeat("\t", depth(kind)+1) + "c\t" + escape(comment) + "\n")

	return err
}

// End implements tree.Visitor.
func (tw *V2Writer) End() error {
	if err := tw.writeHeader(); err != nil {
		return err
	}

	if err := tw.flush(); err != nil {
		return err
	}

	return tw.w.Flush()
}

func (tw *V2Writer) open(kind tree.Kind, prefix, src string) error {
	if err := tw.writeHeader(); err != nil {
		return err
	}

	if err := tw.flush(); err != nil {
		return err
	}

	tw.row.start(kind, prefix, src, tw.dstCount)

	return nil
}

func (tw *V2Writer) flush() error {
	if !tw.row.open {
		return nil
	}

	tw.row.open = false

	var b strings.Builder

	b.WriteString(tw.row.prefix)

	for _, name := range tw.row.names {
		if needsEscape(name) {
			if !tw.escaped {
				return fmt.Errorf("%w: %s name %q needs escaping but the table lacks the %s property",
					diagnostic.ErrFormat, tw.row.kind, name, EscapedNamesProperty)
			}

			name = escape(name)
		}

		b.WriteByte('\t')
		b.WriteString(name)
	}

	b.WriteByte('\n')

	_, err := tw.w.WriteString(b.String())

	return err
}

// depth returns the indentation of a row of the given kind.
func depth(kind tree.Kind) int {
	switch {
	case kind.IsMember():
		return 1
	case kind.IsMethodChild():
		return 2
	default:
		return 0
	}
}

// V1Writer is a visitor that serializes into the Tiny v1 format. Parameters,
// local variables, comments and properties other than intermediary counters
// have no v1 representation and are skipped.
type V1Writer struct {
	w        *bufio.Writer
	dstCount int
	owner    string
	row      row
}

// NewV1Writer returns a visitor writing Tiny v1 to w. Output is buffered
// and flushed by End.
func NewV1Writer(w io.Writer) *V1Writer {
	return &V1Writer{w: bufio.NewWriter(w)}
}

// Header implements tree.Visitor.
func (tw *V1Writer) Header(srcNs string, dstNs []string) error {
	tw.dstCount = len(dstNs)
	tw.row = row{}

	_, err := tw.w.WriteString("v1\t" + strings.Join(append([]string{srcNs}, dstNs...), "\t") + "\n")

	return err
}

// Property implements tree.Visitor.
func (tw *V1Writer) Property(key, value string) error {
	kind, ok := strings.CutPrefix(key, CounterPropertyPrefix)
	if !ok {
		return nil
	}

	_, err := fmt.Fprintf(tw.w, "# %s %s %s\n", counterComment, kind, value)

	return err
}

// Class implements tree.Visitor.
func (tw *V1Writer) Class(srcName string) error {
	tw.owner = srcName

	return tw.open(tree.KindClass, "CLASS", srcName)
}

// Field implements tree.Visitor.
func (tw *V1Writer) Field(srcName, srcDesc string) error {
	return tw.open(tree.KindField, "FIELD\t"+tw.owner+"\t"+srcDesc, srcName)
}

// Method implements tree.Visitor.
func (tw *V1Writer) Method(srcName, srcDesc string) error {
	return tw.open(tree.KindMethod, "METHOD\t"+tw.owner+"\t"+srcDesc, srcName)
}

// Param implements tree.Visitor.
func (tw *V1Writer) Param(int, string) error { return tw.flush() }

// LocalVar implements tree.Visitor.
func (tw *V1Writer) LocalVar(int, int, int, string) error { return tw.flush() }

// DstName implements tree.Visitor.
func (tw *V1Writer) DstName(kind tree.Kind, ns int, name string) error {
	if kind.IsMethodChild() {
		return nil
	}

	return tw.row.set(kind, ns, name)
}

// Comment implements tree.Visitor.
func (tw *V1Writer) Comment(tree.Kind, string) error { return nil }

// End implements tree.Visitor.
func (tw *V1Writer) End() error {
	if err := tw.flush(); err != nil {
		return err
	}

	return tw.w.Flush()
}

func (tw *V1Writer) open(kind tree.Kind, prefix, src string) error {
	if err := tw.flush(); err != nil {
		return err
	}

	tw.row.start(kind, prefix, src, tw.dstCount)

	return nil
}

func (tw *V1Writer) flush() error {
	if !tw.row.open {
		return nil
	}

	tw.row.open = false

	for _, name := range tw.row.names {
		if needsEscape(name) {
			return fmt.Errorf("%w: %s name %q cannot be written to a v1 table", diagnostic.ErrFormat, tw.row.kind, name)
		}
	}

	_, err := tw.w.WriteString(tw.row.prefix + "\t" + strings.Join(tw.row.names, "\t") + "\n")

	return err
}
