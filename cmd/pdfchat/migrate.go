package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdfchat/internal/database"
	"pdfchat/internal/database/migration"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(false)
			if err != nil {
				return err
			}

			db, err := database.NewPostgres(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			return migration.EnsureMigrated(cmd.Context(), db, logger, cfg.Database.Host)
		},
	}
}
