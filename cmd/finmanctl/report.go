package main

import (
	"fmt"
	"time"

	"finman/internal/core"
	"finman/internal/services"

	"github.com/spf13/cobra"
)

type periodFlags struct {
	user  int64
	year  int
	month int
}

func (p *periodFlags) register(cmd *cobra.Command, withMonth bool) {
	now := time.Now()
	cmd.Flags().Int64Var(&p.user, "user", 0, "user ID (required)")
	cmd.Flags().IntVar(&p.year, "year", now.Year(), "calendar year")
	if withMonth {
		cmd.Flags().IntVar(&p.month, "month", int(now.Month()), "month within the year (1-12)")
	}
	_ = cmd.MarkFlagRequired("user")
}

func (p *periodFlags) userID() (core.UserID, error) {
	if p.user <= 0 {
		return 0, fmt.Errorf("%w: --user must be a positive ID", core.ErrInvalidRequest)
	}
	return core.UserID(p.user), nil
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute income and expense reports",
	}
	cmd.AddCommand(a.monthlyReportCmd(), a.yearlyReportCmd())
	return cmd
}

func (a *app) monthlyReportCmd() *cobra.Command {
	var p periodFlags
	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Print a user's monthly report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := p.userID()
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store services.Store) error {
				report, err := services.NewReportService(store).Monthly(cmd.Context(), user, p.year, p.month)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	p.register(cmd, true)
	return cmd
}

func (a *app) yearlyReportCmd() *cobra.Command {
	var p periodFlags
	cmd := &cobra.Command{
		Use:   "yearly",
		Short: "Print a user's yearly report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := p.userID()
			if err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(store services.Store) error {
				report, err := services.NewReportService(store).Yearly(cmd.Context(), user, p.year)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	p.register(cmd, false)
	return cmd
}
