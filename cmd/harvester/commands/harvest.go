package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rohinmanvi/documentation-harvester/internal/report"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Run exactly one harvest cycle and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		o, backend, err := buildOrchestrator(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		summary, err := o.HarvestOnce(ctx)
		if err != nil {
			return &cliError{code: exitStoreError, err: err}
		}

		return report.WriteText(os.Stdout, summary)
	},
}
