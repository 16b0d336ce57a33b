package commands

import (
	"github.com/spf13/cobra"

	"tinymerge/internal/config"
	"tinymerge/internal/pipeline"
	"tinymerge/internal/tiny"
)

type mergeCommand struct {
	app *App

	intermediate string
	mappings     string
	artifact     string
	output       string
	format       string
	workDir      string
}

func newMergeCommand(app *App) *cobra.Command {
	c := &mergeCommand{app: app}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge an intermediate table with a curated one",
		Long: `Merge the intermediate table (source -> intermediate namespace) with the
curated table (intermediate -> named namespace) and write the result in
source, intermediate, named order. Nested classes without a curated name
inherit the name of their enclosing class.

A curated table in Tiny v1 is taken as already merged and passed to the
configured field-name proposer instead.

Examples:
  tinymerge merge -i hashed.tiny -m unmerged-mappings.tiny -o mappings.tiny
  tinymerge merge -i hashed.tiny -m merged-v1.tiny --artifact game.jar`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	cmd.Flags().StringVarP(&c.intermediate, "intermediate", "i", "", "intermediate table")
	cmd.Flags().StringVarP(&c.mappings, "mappings", "m", config.UnmergedMappingsFile, "curated table")
	cmd.Flags().StringVar(&c.artifact, "artifact", "", "artifact passed to the proposer")
	cmd.Flags().StringVarP(&c.output, "output", "o", config.MappingsFile, "output table")
	cmd.Flags().StringVarP(&c.format, "format", "f", "", "output format: v1 or v2 (default from config)")
	cmd.Flags().StringVar(&c.workDir, "work-dir", "", "directory for intermediate tables")

	return cmd
}

func (c *mergeCommand) run(cmd *cobra.Command, _ []string) error {
	format, err := c.app.outputFormat(c.format)
	if err != nil {
		return err
	}

	p, err := c.app.pipeline(pipeline.WithWorkDir(c.workDir))
	if err != nil {
		return err
	}

	res, err := p.Run(cmd.Context(), pipeline.Request{
		Intermediate: c.intermediate,
		Mappings:     c.mappings,
		Artifact:     c.artifact,
		Output:       c.output,
		Format:       format,
	})
	if err != nil {
		return err
	}

	c.app.report(cmd, res.Diagnostics)

	switch {
	case res.Proposed:
		c.app.done(cmd, "proposed field names into %s", c.output)
	case res.Merged != nil:
		c.app.done(cmd, "merged %d classes into %s (%d inherited names)",
			res.Merged.Tree.Len(), c.output, res.Merged.Inherit.Renamed)
	default:
		c.app.done(cmd, "wrote %s", c.output)
	}

	return nil
}

// outputFormat parses flag, falling back to the configured format.
func (a *App) outputFormat(flag string) (tiny.Format, error) {
	if flag == "" {
		return a.cfg.OutputFormat(), nil
	}

	return tiny.ParseFormat(flag)
}
