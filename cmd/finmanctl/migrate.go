package main

import (
	"finman/internal/services"

	"github.com/spf13/cobra"
)

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Migrations also run whenever the server starts; this command lets
them be applied ahead of a deploy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.logger.Info("Starting database migration", "backend", a.cfg.DataBackend)
			err := a.withStore(cmd.Context(), func(store services.Store) error {
				return store.Ping(cmd.Context())
			})
			if err != nil {
				return err
			}
			a.logger.Info("Database migrations completed")
			return nil
		},
	}
}
