// Package memory keeps exported reports in process memory. The worker uses it
// when no spreadsheet is configured, and tests use it to observe exports.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"finman/internal/core"
	ports "finman/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	reports map[string]core.MonthlyReport
}

var _ ports.ReportExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{reports: map[string]core.MonthlyReport{}}
}

// ExportMonthlyReport stores r under its sheet title, replacing any previous one.
func (e *Exporter) ExportMonthlyReport(ctx context.Context, user core.UserID, r core.MonthlyReport) error {
	title := ports.MonthlyTitle(user, r.Year, r.Month)

	e.mu.Lock()
	e.reports[title] = r
	e.mu.Unlock()

	slog.DebugContext(ctx, "Monthly report kept in memory", "sheet", title)
	return nil
}

// Report returns the last report exported under title.
func (e *Exporter) Report(title string) (core.MonthlyReport, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.reports[title]
	return r, ok
}

// Titles lists the exported sheet titles in order.
func (e *Exporter) Titles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.reports))
	for title := range e.reports {
		out = append(out, title)
	}
	sort.Strings(out)
	return out
}
