package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/table-reservation/internal/config"
	"github.com/iliyamo/table-reservation/internal/logger"
)

// configPath is the optional YAML file given with --config.
var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "server",
		Short: "Restaurant table booking service",
		Long: `Restaurant table booking service.

Without a subcommand the HTTP API is started, same as "server serve".
Settings come from the environment (a .env file is loaded first) and an
optional YAML file passed with --config.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newWorkerCmd(),
		newTokenCmd(),
	)
	return root
}

// loadRuntime loads .env, the configuration and the logger shared by every
// subcommand.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log.With(zap.String("env", cfg.App.Env)), nil
}
