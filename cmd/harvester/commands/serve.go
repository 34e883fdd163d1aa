package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rohinmanvi/documentation-harvester/internal/metrics"
)

var metricsPort int

func init() {
	serveCmd.Flags().IntVar(&metricsPort, "metrics-port", 0, "port to expose Prometheus metrics on (0 disables metrics)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run harvest cycles on the configured schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		o, backend, err := buildOrchestrator(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		if metricsPort != 0 {
			metricsSrv := metrics.Start(metricsPort)
			defer metricsSrv.Stop(context.Background())
		}

		if err := o.RunForever(ctx); err != nil && ctx.Err() == nil {
			return &cliError{code: exitStoreError, err: err}
		}
		return nil
	},
}
