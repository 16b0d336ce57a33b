package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"tinymerge/internal/recipe"
)

func newRecipeCommand(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "recipe <file.yaml>",
		Short: "Run a YAML merge recipe",
		Long: `Run a merge recipe: read its sources, apply their completions and
switches, fold the merge steps, inherit enclosing names and write the
output. Paths in the recipe are relative to the recipe file.

Examples:
  tinymerge recipe build.yaml
  tinymerge recipe --check build.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := recipe.LoadFile(args[0])
			if err != nil {
				return err
			}

			if check {
				diags := recipe.Validate(r)
				app.report(cmd, diags)

				if diags.HasErrors() {
					return fmt.Errorf("%s: %d errors", args[0], len(diags.Errors))
				}

				app.done(cmd, "%s is valid", args[0])

				return nil
			}

			p, err := app.pipeline()
			if err != nil {
				return err
			}

			res, err := p.RunRecipe(cmd.Context(), r, filepath.Dir(args[0]))
			if res != nil {
				app.report(cmd, res.Diagnostics)
			}

			if err != nil {
				return err
			}

			app.done(cmd, "wrote %d classes to %s", res.Tree.Len(), res.Output)

			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only validate the recipe")

	return cmd
}
