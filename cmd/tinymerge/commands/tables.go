package commands

import (
	"github.com/spf13/cobra"

	"tinymerge/internal/inherit"
	"tinymerge/internal/nsop"
	"tinymerge/internal/tiny"
	"tinymerge/internal/tree"
)

// rewrite loads args[0], applies fn and writes the result to args[1].
func (a *App) rewrite(cmd *cobra.Command, args []string, formatFlag string,
	fn func(t *tree.Tree) (*tree.Tree, error),
) error {
	format, err := a.outputFormat(formatFlag)
	if err != nil {
		return err
	}

	t, err := a.cache.Load(args[0])
	if err != nil {
		return err
	}

	out, err := fn(t)
	if err != nil {
		return err
	}

	if err := tiny.WriteFile(args[1], out, format); err != nil {
		return err
	}

	a.done(cmd, "wrote %d classes to %s (%s)", out.Len(), args[1], format)

	return nil
}

func newConvertCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a table between Tiny v1 and v2",
		Long: `Convert a table. The input format is detected; names ending in .lz4
are read and written LZ4-compressed.

Examples:
  tinymerge convert --format v2 merged-v1.tiny merged.tiny
  tinymerge convert mappings.tiny mappings.tiny.lz4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.rewrite(cmd, args, format, func(t *tree.Tree) (*tree.Tree, error) {
				return t, nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: v1 or v2 (default from config)")

	return cmd
}

func newSwitchCommand(app *App) *cobra.Command {
	var format, to string

	cmd := &cobra.Command{
		Use:   "switch <in> <out>",
		Short: "Make another namespace the source namespace",
		Long: `Switch the source namespace. The old source namespace takes the new
one's column; entries without a name in the new namespace are dropped.

Example:
  tinymerge switch --to hashed hashed.tiny inverted-hashed.tiny`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.rewrite(cmd, args, format, func(t *tree.Tree) (*tree.Tree, error) {
				out, diags, err := nsop.Switch(t, to)
				app.report(cmd, diags)

				return out, err
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: v1 or v2 (default from config)")
	cmd.Flags().StringVar(&to, "to", "", "new source namespace")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newCompleteCommand(app *App) *cobra.Command {
	var (
		format string
		fill   map[string]string
	)

	cmd := &cobra.Command{
		Use:   "complete <in> <out>",
		Short: "Fill missing names from a fallback namespace",
		Long: `Give every entry lacking a name in a target namespace the name it has
in the fallback namespace, or its source name. Existing names are kept.

Example:
  tinymerge complete --fill named=hashed hashed.tiny completed.tiny`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(fill) == 0 {
				fill = map[string]string{app.cfg.Namespaces.Named: app.cfg.Namespaces.Intermediate}
			}

			return app.rewrite(cmd, args, format, func(t *tree.Tree) (*tree.Tree, error) {
				return nsop.Complete(t, fill)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: v1 or v2 (default from config)")
	cmd.Flags().StringToStringVar(&fill, "fill", nil, "target=fallback pairs (default: named=intermediate from config)")

	return cmd
}

func newReorderCommand(app *App) *cobra.Command {
	var namespaces []string

	cmd := &cobra.Command{
		Use:   "reorder <in> <out>",
		Short: "Reorder namespaces",
		Long: `Rewrite a table with its namespaces in the given order. The first one
becomes the source namespace; namespaces left out are dropped. The
configured external reorderer is used when set.

Example:
  tinymerge reorder --namespaces official,hashed,named unordered-merged.tiny mappings.tiny`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(namespaces) == 0 {
				ns := app.cfg.Namespaces
				namespaces = []string{ns.Source, ns.Intermediate, ns.Named}
			}

			r, err := app.reorderer()
			if err != nil {
				return err
			}

			if err := r.Reorder(cmd.Context(), args[0], args[1], namespaces); err != nil {
				return err
			}

			app.done(cmd, "wrote %s", args[1])

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&namespaces, "namespaces", nil, "namespace order (default: source,intermediate,named from config)")

	return cmd
}

func newInheritCommand(app *App) *cobra.Command {
	var format, intermediate, named string

	cmd := &cobra.Command{
		Use:   "inherit <in> <out>",
		Short: "Give nested classes their enclosing class's name",
		Long: `Rename nested classes whose named name is still their intermediate name
after the closest enclosing class that has a curated name:

  a/b -> x/y   and   a/b$c -> a/b$c   gives   a/b$c -> x/y$c`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if intermediate == "" {
				intermediate = app.cfg.Namespaces.Intermediate
			}

			if named == "" {
				named = app.cfg.Namespaces.Named
			}

			return app.rewrite(cmd, args, format, func(t *tree.Tree) (*tree.Tree, error) {
				res, err := inherit.Apply(t, intermediate, named, inherit.WithLogger(app.logger))
				if err != nil {
					return nil, err
				}

				app.done(cmd, "renamed %d nested classes", res.Renamed)

				return t, nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: v1 or v2 (default from config)")
	cmd.Flags().StringVar(&intermediate, "intermediate", "", "intermediate namespace (default from config)")
	cmd.Flags().StringVar(&named, "named", "", "named namespace (default from config)")

	return cmd
}
