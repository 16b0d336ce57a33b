package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tinymerge/internal/external"
)

var errNoProposer = errors.New("no proposer configured (set external.proposer)")

func newProposeCommand(app *App) *cobra.Command {
	var artifact string

	cmd := &cobra.Command{
		Use:   "propose <in> <out>",
		Short: "Run the field-name proposer",
		Long: `Run the configured field-name proposer on a merged table. The command
template may use {artifact}, {input} and {output}.

Example:
  TINYMERGE_EXTERNAL_PROPOSER="java -jar proposer.jar {artifact} {input} {output}" \
    tinymerge propose --artifact game.jar merged-v1.tiny mappings.tiny`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfg.External.Proposer == "" {
				return errNoProposer
			}

			pr, err := external.NewCommand(app.cfg.External.Proposer, app.logger)
			if err != nil {
				return err
			}

			if err := pr.Propose(cmd.Context(), artifact, args[0], args[1]); err != nil {
				return err
			}

			app.done(cmd, "wrote %s", args[1])

			return nil
		},
	}

	cmd.Flags().StringVar(&artifact, "artifact", "", "artifact passed to the proposer")

	return cmd
}
