// Package sheets defines where computed reports are exported to.
package sheets

import (
	"context"
	"fmt"

	"finman/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportExporter writes a user's monthly report to an external sheet,
	// replacing whatever was exported for that month before.
	ReportExporter interface {
		ExportMonthlyReport(ctx context.Context, user core.UserID, r core.MonthlyReport) error
	}
)

// MonthlyTitle names the tab holding user's report for year/month, e.g. "u42-2024-01".
func MonthlyTitle(user core.UserID, year, month int) string {
	return fmt.Sprintf("u%d-%04d-%02d", user, year, month)
}
