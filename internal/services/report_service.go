package services

import (
	"context"
	"fmt"
	"log/slog"

	"finman/internal/core"
	applog "finman/internal/log"
)

// ReportService aggregates a user's ledger over a calendar period.
type ReportService struct {
	store Store
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// Monthly summarises the given month. month must be within 1-12.
func (s *ReportService) Monthly(ctx context.Context, user core.UserID, year, month int) (core.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return core.MonthlyReport{}, fmt.Errorf("%w: month must be between 1 and 12", core.ErrInvalidRequest)
	}

	from, to := core.MonthRange(year, month)
	txs, err := s.period(ctx, user, from, to)
	if err != nil {
		return core.MonthlyReport{}, err
	}
	income, expenses, net := core.Aggregate(txs)

	slog.DebugContext(ctx, "Monthly report computed",
		applog.FieldUserID, user,
		applog.FieldYear, year,
		applog.FieldMonth, month,
		"transactions", len(txs))
	return core.MonthlyReport{
		Month:         month,
		Year:          year,
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetSavings:    net,
	}, nil
}

// Yearly summarises the given year.
func (s *ReportService) Yearly(ctx context.Context, user core.UserID, year int) (core.YearlyReport, error) {
	from, to := core.YearRange(year)
	txs, err := s.period(ctx, user, from, to)
	if err != nil {
		return core.YearlyReport{}, err
	}
	income, expenses, net := core.Aggregate(txs)

	slog.DebugContext(ctx, "Yearly report computed",
		applog.FieldUserID, user,
		applog.FieldYear, year,
		"transactions", len(txs))
	return core.YearlyReport{
		Year:          year,
		TotalIncome:   income,
		TotalExpenses: expenses,
		NetSavings:    net,
	}, nil
}

// period reads all transactions within [from, to] from a single snapshot.
func (s *ReportService) period(ctx context.Context, user core.UserID, from, to core.Date) ([]core.Transaction, error) {
	var txs []core.Transaction
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		txs, err = tx.ListTransactions(ctx, user, TransactionFilter{From: &from, To: &to})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	return txs, nil
}
