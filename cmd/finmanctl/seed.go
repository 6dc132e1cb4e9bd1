package main

import (
	"fmt"

	applog "finman/internal/log"
	"finman/internal/services"

	"github.com/spf13/cobra"
)

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default categories that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(store services.Store) error {
				n, err := services.NewCategoryService(store).SeedDefaults(cmd.Context())
				if err != nil {
					return err
				}
				a.logger.Info("Default categories seeded", applog.FieldOperation, applog.OpSeed, "inserted", n)
				fmt.Fprintf(cmd.OutOrStdout(), "%d default categories inserted\n", n)
				return nil
			})
		},
	}
}
