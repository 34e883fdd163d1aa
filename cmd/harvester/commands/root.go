// Package commands implements the documentation-harvester CLI.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rohinmanvi/documentation-harvester/internal/config"
	"github.com/rohinmanvi/documentation-harvester/internal/logging"
	"github.com/rohinmanvi/documentation-harvester/internal/orchestrator"
	"github.com/rohinmanvi/documentation-harvester/internal/packagesource"
	"github.com/rohinmanvi/documentation-harvester/internal/store"
	"github.com/rohinmanvi/documentation-harvester/internal/store/postgres"
	"github.com/rohinmanvi/documentation-harvester/internal/store/sqlite"
)

// Exit codes per the external interface contract.
const (
	exitOK          = 0
	exitConfigError = 1
	exitStoreError  = 2
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "harvester",
	Short: "Crawl documentation sites for popular packages and build a versioned corpus",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "harvester.yaml", "path to the YAML configuration file")
	rootCmd.AddCommand(harvestCmd, serveCmd)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		if code, ok := exitCodeFor(err); ok {
			return code
		}
		fmt.Fprintln(os.Stderr, err)
		return exitConfigError
	}
	return exitOK
}

// cliError carries the exit code a failure should produce.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func exitCodeFor(err error) (int, bool) {
	if ce, ok := err.(*cliError); ok {
		return ce.code, true
	}
	return 0, false
}

// buildOrchestrator loads configuration and wires an Orchestrator against
// the configured store backend. Callers must Close() the returned backend.
func buildOrchestrator(ctx context.Context) (*orchestrator.Orchestrator, store.Backend, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, &cliError{code: exitConfigError, err: err}
	}

	logger := logging.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	backend, err := openBackend(ctx, cfg.Database)
	if err != nil {
		return nil, nil, &cliError{code: exitStoreError, err: err}
	}

	source := packagesource.New(packagesource.Config{
		TopPackagesURL: cfg.Packages.TopPackagesURL,
		TopN:           cfg.Packages.TopN,
	}, nil, logger)

	return orchestrator.New(cfg, backend, source, logger), backend, nil
}

func openBackend(ctx context.Context, dbCfg config.Database) (store.Backend, error) {
	switch dbCfg.Driver {
	case "postgres":
		return postgres.New(ctx, dbCfg.Path)
	default:
		return sqlite.New(ctx, dbCfg.Path)
	}
}
