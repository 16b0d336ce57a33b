// Package report summarizes mapping tables for people: coverage statistics
// and line diffs of serialized tables.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tinymerge/internal/tree"
)

const percent = 100

// KindStats counts the entries of one kind and how many of them have a
// name in each destination namespace.
type KindStats struct {
	Kind  tree.Kind
	Total int
	Named []int
}

// Stats summarizes a tree.
type Stats struct {
	SrcNamespace  string
	DstNamespaces []string
	Properties    int
	Comments      int
	Kinds         []KindStats
}

// Kind returns the counts for kind k.
func (s *Stats) Kind(k tree.Kind) KindStats {
	for _, ks := range s.Kinds {
		if ks.Kind == k {
			return ks
		}
	}

	return KindStats{Kind: k, Named: make([]int, len(s.DstNamespaces))}
}

// Collect walks t and counts its entries.
func Collect(t *tree.Tree) *Stats {
	dst := t.DstNamespaces()
	s := &Stats{
		SrcNamespace:  t.SrcNamespace(),
		DstNamespaces: dst,
		Properties:    len(t.Properties()),
	}

	kinds := []tree.Kind{tree.KindClass, tree.KindField, tree.KindMethod, tree.KindParam, tree.KindLocalVar}
	byKind := make(map[tree.Kind]*KindStats, len(kinds))

	for _, k := range kinds {
		s.Kinds = append(s.Kinds, KindStats{Kind: k, Named: make([]int, len(dst))})
	}

	for i := range s.Kinds {
		byKind[s.Kinds[i].Kind] = &s.Kinds[i]
	}

	type named interface {
		DstName(ns int) string
		Comment() string
	}

	count := func(k tree.Kind, e named) {
		ks := byKind[k]
		ks.Total++

		for ns := range dst {
			if e.DstName(ns) != "" {
				ks.Named[ns]++
			}
		}

		if e.Comment() != "" {
			s.Comments++
		}
	}

	for _, c := range t.Classes() {
		count(tree.KindClass, c)

		for _, f := range c.Fields() {
			count(tree.KindField, f)
		}

		for _, m := range c.Methods() {
			count(tree.KindMethod, m)

			for _, p := range m.Params() {
				count(tree.KindParam, p)
			}

			for _, v := range m.LocalVars() {
				count(tree.KindLocalVar, v)
			}
		}
	}

	return s
}

// RenderStats writes s as a table with one row per kind and one coverage
// column per destination namespace.
func RenderStats(w io.Writer, s *Stats) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	// Namespace names are case sensitive.
	tbl.Style().Format.Header = text.FormatDefault
	tbl.Style().Format.Footer = text.FormatDefault

	header := table.Row{"kind", "total"}
	for _, ns := range s.DstNamespaces {
		header = append(header, ns)
	}

	tbl.AppendHeader(header)

	for _, ks := range s.Kinds {
		row := table.Row{ks.Kind.String(), ks.Total}
		for _, n := range ks.Named {
			row = append(row, coverage(n, ks.Total))
		}

		tbl.AppendRow(row)
	}

	tbl.AppendFooter(table.Row{
		"source: " + s.SrcNamespace,
		fmt.Sprintf("%d comments", s.Comments),
		fmt.Sprintf("%d properties", s.Properties),
	})

	tbl.Render()

	return nil
}

func coverage(n, total int) string {
	if total == 0 {
		return "-"
	}

	return fmt.Sprintf("%d (%.1f%%)", n, float64(n)*percent/float64(total))
}
