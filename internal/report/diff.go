package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of a diff line.
type Op int

const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// DiffLine is one line of a diff, without its line terminator.
type DiffLine struct {
	Op   Op
	Text string
}

// DiffResult is a line diff of two serialized tables.
type DiffResult struct {
	Lines   []DiffLine
	Added   int
	Removed int
}

// Equal reports whether the inputs were identical.
func (d *DiffResult) Equal() bool { return d.Added == 0 && d.Removed == 0 }

// Diff compares a and b line by line.
func Diff(a, b string) *DiffResult {
	dmp := diffmatchpatch.New()
	src, dst, lines := dmp.DiffLinesToRunes(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMainRunes(src, dst, false), lines)

	res := &DiffResult{}

	for _, d := range diffs {
		op := OpEqual

		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		case diffmatchpatch.DiffEqual:
		}

		for _, line := range splitLines(d.Text) {
			res.Lines = append(res.Lines, DiffLine{Op: op, Text: line})

			switch op {
			case OpInsert:
				res.Added++
			case OpDelete:
				res.Removed++
			case OpEqual:
			}
		}
	}

	return res
}

// RenderOptions controls Render.
type RenderOptions struct {
	// Context is the number of unchanged lines shown around each change;
	// negative shows every line.
	Context int

	// Color highlights added and removed lines.
	Color bool
}

// Render writes the diff with "+", "-" and " " prefixes. Tabs in table
// rows are shown as "→" so columns stay visible.
func (d *DiffResult) Render(w io.Writer, opts RenderOptions) error {
	show := d.visible(opts.Context)

	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	skipped := false

	for i, l := range d.Lines {
		if !show[i] {
			skipped = true

			continue
		}

		if skipped {
			if _, err := fmt.Fprintln(w, "@@"); err != nil {
				return err
			}

			skipped = false
		}

		text := strings.ReplaceAll(l.Text, "\t", "→")

		var line string

		switch l.Op {
		case OpInsert:
			line = "+" + text
			if opts.Color {
				line = added.Sprint(line)
			}
		case OpDelete:
			line = "-" + text
			if opts.Color {
				line = removed.Sprint(line)
			}
		case OpEqual:
			line = " " + text
		}

		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

func (d *DiffResult) visible(context int) []bool {
	show := make([]bool, len(d.Lines))

	for i, l := range d.Lines {
		if context < 0 || l.Op != OpEqual {
			show[i] = true

			continue
		}

		for j := max(0, i-context); j <= min(len(d.Lines)-1, i+context); j++ {
			if d.Lines[j].Op != OpEqual {
				show[i] = true

				break
			}
		}
	}

	return show
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}

	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}
