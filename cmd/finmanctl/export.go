package main

import (
	"fmt"

	"finman/internal/services"
	"finman/internal/sheets"
	"finman/internal/worker"

	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var p periodFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's monthly report to the configured spreadsheet",
		Long: `Recompute one monthly report and write it to Google Sheets, the same
way the worker does after a ledger change. Without GOOGLE_SPREADSHEET_ID
the report is only computed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := p.userID()
			if err != nil {
				return err
			}
			exporter, err := a.factory().OpenExporter(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store services.Store) error {
				w := worker.NewReportWorker(services.NewReportService(store), exporter)
				if err := w.ExportMonth(cmd.Context(), user, p.year, p.month); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %s\n", sheets.MonthlyTitle(user, p.year, p.month))
				return nil
			})
		},
	}
	p.register(cmd, true)
	return cmd
}
