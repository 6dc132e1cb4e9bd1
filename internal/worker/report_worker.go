// Package worker keeps exported monthly reports in step with the ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finman/internal/core"
	applog "finman/internal/log"
	"finman/internal/services"
	"finman/internal/sheets"
)

// MonthlyReporter computes a user's report for one month.
type MonthlyReporter interface {
	Monthly(ctx context.Context, user core.UserID, year, month int) (core.MonthlyReport, error)
}

// ReportWorker re-exports the monthly report touched by each ledger event.
type ReportWorker struct {
	reports  MonthlyReporter
	exporter sheets.ReportExporter
}

func NewReportWorker(reports MonthlyReporter, exporter sheets.ReportExporter) *ReportWorker {
	return &ReportWorker{reports: reports, exporter: exporter}
}

// HandleLedgerEvent processes a single ledger event from AMQP. Events with a
// month outside 1-12 are acknowledged without exporting anything; every other
// event re-exports its month, even when the month is now empty.
func (w *ReportWorker) HandleLedgerEvent(ctx context.Context, e services.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		applog.FieldEventType, e.Type,
		applog.FieldUserID, e.UserID,
		applog.FieldTransactionID, e.TransactionID,
		applog.FieldYear, e.Year,
		applog.FieldMonth, e.Month)

	err := w.ExportMonth(ctx, e.UserID, e.Year, e.Month)
	if errors.Is(err, core.ErrInvalidRequest) {
		slog.WarnContext(ctx, "Dropping ledger event with unusable period",
			applog.FieldEventType, e.Type,
			applog.FieldError, err)
		return nil
	}
	return err
}

// ExportMonth recomputes and exports the report for user's year/month.
func (w *ReportWorker) ExportMonth(ctx context.Context, user core.UserID, year, month int) error {
	report, err := w.reports.Monthly(ctx, user, year, month)
	if err != nil {
		return fmt.Errorf("compute monthly report: %w", err)
	}

	if err := w.exporter.ExportMonthlyReport(ctx, user, report); err != nil {
		return fmt.Errorf("export monthly report: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported monthly report",
		applog.FieldUserID, user,
		applog.FieldYear, year,
		applog.FieldMonth, month,
		"net_savings", report.NetSavings.String())
	return nil
}
