package commands

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tinymerge/internal/report"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

var errTablesDiffer = errors.New("tables differ")

const defaultDiffContext = 3

func newDetectCommand(_ *App) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <table>...",
		Short: "Print the format of tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int

			for _, path := range args {
				format, err := tiny.DetectFile(path)
				if err != nil {
					color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)

					failed++

					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", path, format)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d tables not recognized", failed, len(args))
			}

			return nil
		},
	}
}

func newStatsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <table>",
		Short: "Print name coverage of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.cache.Load(args[0])
			if err != nil {
				return err
			}

			return report.RenderStats(cmd.OutOrStdout(), report.Collect(t))
		},
	}
}

func newDiffCommand(app *App) *cobra.Command {
	var (
		context  int
		exitCode bool
	)

	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Diff two tables",
		Long: `Diff two tables line by line. Both are read and written as Tiny v2
first, so a v1 table can be compared with a v2 one.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.serialize(args[0])
			if err != nil {
				return err
			}

			b, err := app.serialize(args[1])
			if err != nil {
				return err
			}

			d := report.Diff(a, b)

			err = d.Render(cmd.OutOrStdout(), report.RenderOptions{Context: context, Color: !color.NoColor})
			if err != nil {
				return err
			}

			if !app.quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "+%d -%d\n", d.Added, d.Removed)
			}

			if exitCode && !d.Equal() {
				return errTablesDiffer
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&context, "context", "U", defaultDiffContext, "unchanged lines around changes; -1 shows all")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "fail when the tables differ")

	return cmd
}

func (a *App) serialize(path string) (string, error) {
	t, err := a.cache.Load(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tiny.Write(&buf, t, tiny.FormatV2); err != nil {
		return "", fmt.Errorf("serializing %s: %w", path, err)
	}

	return buf.String(), nil
}

func newInspectCommand(app *App) *cobra.Command {
	var (
		ns  string
		raw bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <table> <class>",
		Short: "Show one class of a table",
		Long: `Show the names of one class and its members in every namespace. The
class is looked up by its source name, or by its name in --ns.

Examples:
  tinymerge inspect mappings.tiny a
  tinymerge inspect --ns named mappings.tiny net/minecraft/Foo
  tinymerge inspect --raw mappings.tiny a`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.cache.Load(args[0])
			if err != nil {
				return err
			}

			id := tree.SrcNamespace
			if ns != "" {
				var ok bool
				if id, ok = t.LookupNamespace(ns); !ok {
					return fmt.Errorf("inspect: unknown namespace %q", ns)
				}
			}

			c := t.ClassByName(id, args[1])
			if c == nil {
				return fmt.Errorf("inspect: class %q not found in %s", args[1], args[0])
			}

			if raw {
				dumper := spew.ConfigState{Indent: "  ", MaxDepth: 3, DisablePointerAddresses: true, SortKeys: true}
				dumper.Fdump(cmd.OutOrStdout(), c)

				return nil
			}

			renderClass(cmd, t, c)

			return nil
		},
	}

	cmd.Flags().StringVar(&ns, "ns", "", "namespace the class name is given in (default: source)")
	cmd.Flags().BoolVar(&raw, "raw", false, "dump the entry structure")

	return cmd
}

func renderClass(cmd *cobra.Command, t *tree.Tree, c *tree.ClassEntry) {
	dst := t.DstNamespaces()

	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)

	header := table.Row{"kind", t.SrcNamespace()}
	for _, n := range dst {
		header = append(header, n)
	}

	tbl.AppendHeader(header)

	type entry interface {
		SrcName() string
		DstName(ns int) string
	}

	add := func(kind tree.Kind, src string, e entry) {
		row := table.Row{kind.String(), src}
		for i := range dst {
			row = append(row, e.DstName(i))
		}

		tbl.AppendRow(row)
	}

	add(tree.KindClass, c.SrcName(), c)

	for _, f := range c.Fields() {
		add(tree.KindField, f.SrcName()+":"+f.SrcDesc(), f)
	}

	for _, m := range c.Methods() {
		add(tree.KindMethod, m.SrcName()+m.SrcDesc(), m)

		for _, p := range m.Params() {
			add(tree.KindParam, fmt.Sprintf("  %d %s", p.LvIndex(), p.SrcName()), p)
		}

		for _, v := range m.LocalVars() {
			add(tree.KindLocalVar, fmt.Sprintf("  %d@%d %s", v.LvIndex(), v.StartOffset(), v.SrcName()), v)
		}
	}

	if c.Comment() != "" {
		tbl.AppendFooter(table.Row{"comment", c.Comment()})
	}

	tbl.Render()
}
