// Package commands implements the tinymerge subcommands.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tinymerge/internal/cache"
	"tinymerge/internal/config"
	"tinymerge/internal/diagnostic"
	"tinymerge/internal/external"
	"tinymerge/internal/pipeline"
)

// App holds the state shared by all subcommands. It is filled in before
// any subcommand runs.
type App struct {
	configPath string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg    *config.Config
	logger *slog.Logger
	cache  *cache.Cache
}

// NewRootCommand creates the tinymerge root command with all subcommands.
func NewRootCommand(version string) *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "tinymerge",
		Short: "Merge and rewrite Tiny mapping tables",
		Long: `tinymerge merges symbol mapping tables in the Tiny v1/v2 formats.

Commands:
  merge     Merge an intermediate table with a curated one
  recipe    Run a YAML merge recipe
  convert   Convert between Tiny v1 and v2
  switch    Make another namespace the source namespace
  complete  Fill missing names from a fallback namespace
  reorder   Reorder namespaces
  inherit   Give nested classes their enclosing class's name
  detect    Print the format of tables
  stats     Print name coverage of a table
  diff      Diff two tables
  inspect   Show one class of a table
  propose   Run the field-name proposer`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", "", "config file (default: tinymerge.yaml in . or ./config)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&app.quiet, "quiet", "q", false, "suppress output")
	root.PersistentFlags().BoolVar(&app.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newMergeCommand(app),
		newRecipeCommand(app),
		newConvertCommand(app),
		newSwitchCommand(app),
		newCompleteCommand(app),
		newReorderCommand(app),
		newInheritCommand(app),
		newDetectCommand(app),
		newStatsCommand(app),
		newDiffCommand(app),
		newInspectCommand(app),
		newProposeCommand(app),
		newVersionCommand(version),
	)

	return root
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tinymerge %s\n", version)
		},
	}
}

func (a *App) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	switch {
	case a.verbose:
		cfg.Logging.Level = "debug"
	case a.quiet:
		cfg.Logging.Level = "error"
	}

	logger, err := cfg.Logging.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	c, err := cache.New(cfg.Cache.Size, cache.WithRefresh(cfg.Cache.Refresh), cache.WithLogger(logger))
	if err != nil {
		return err
	}

	if a.noColor || !isTerminal(cmd.OutOrStdout()) {
		color.NoColor = true //nolint:reassign // library global
	}

	a.cfg, a.logger, a.cache = cfg, logger, c

	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// pipeline builds a pipeline from the loaded configuration.
func (a *App) pipeline(extra ...pipeline.Option) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithCache(a.cache),
		pipeline.WithLogger(a.logger),
		pipeline.WithNamespaces(a.cfg.Namespaces),
	}

	if a.cfg.External.Proposer != "" {
		pr, err := external.NewCommand(a.cfg.External.Proposer, a.logger)
		if err != nil {
			return nil, fmt.Errorf("proposer: %w", err)
		}

		opts = append(opts, pipeline.WithProposer(pr))
	}

	if a.cfg.External.Reorderer != "" {
		r, err := external.NewCommand(a.cfg.External.Reorderer, a.logger)
		if err != nil {
			return nil, fmt.Errorf("reorderer: %w", err)
		}

		opts = append(opts, pipeline.WithReorderer(r))
	}

	return pipeline.New(append(opts, extra...)...), nil
}

// reorderer returns the configured reorderer, or the in-process one.
func (a *App) reorderer() (external.Reorderer, error) {
	if a.cfg.External.Reorderer == "" {
		return external.NativeReorderer{}, nil
	}

	return external.NewCommand(a.cfg.External.Reorderer, a.logger)
}

// report prints warnings and errors of d, and infos when verbose.
func (a *App) report(cmd *cobra.Command, d *diagnostic.Diagnostics) {
	if d == nil || a.quiet {
		return
	}

	w := cmd.ErrOrStderr()

	for _, e := range d.Errors {
		color.New(color.FgRed).Fprintf(w, "error: %s\n", e)
	}

	for _, e := range d.Warnings {
		color.New(color.FgYellow).Fprintf(w, "warning: %s\n", e)
	}

	if a.verbose {
		for _, e := range d.Infos {
			fmt.Fprintf(w, "info: %s\n", e)
		}
	} else if n := len(d.Infos); n > 0 {
		fmt.Fprintf(w, "%d info diagnostics (use --verbose to list them)\n", n)
	}
}

// done prints a success line unless quiet.
func (a *App) done(cmd *cobra.Command, format string, args ...any) {
	if a.quiet {
		return
	}

	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}
