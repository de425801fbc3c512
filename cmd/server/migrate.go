package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iliyamo/table-reservation/internal/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or revert the database schema",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{database.Up, database.Down},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := database.Up
			if len(args) == 1 {
				direction = args[0]
			}
			if direction != database.Up && direction != database.Down {
				return fmt.Errorf("unknown migration direction %q, want up or down", direction)
			}
			cfg, log, err := loadRuntime()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return database.Migrate(cfg.DB, direction, log)
		},
	}
}
