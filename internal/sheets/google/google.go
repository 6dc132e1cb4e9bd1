// Package google exports monthly reports to a Google Sheets spreadsheet, one
// tab per user and month.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"finman/internal/core"
	applog "finman/internal/log"
	ports "finman/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var _ ports.ReportExporter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account. Extra
// options are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	creds, err := credentialsJSON(cfg)
	if err != nil {
		return nil, err
	}
	all := append([]goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)

	svc, err := gsheet.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// NewWithService wraps an already configured service.
func NewWithService(svc *gsheet.Service, spreadsheetID string) *Client {
	return &Client{svc: svc, spreadsheetID: spreadsheetID}
}

func credentialsJSON(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// ExportMonthlyReport replaces the content of the report's tab, creating the
// tab on first use.
func (c *Client) ExportMonthlyReport(ctx context.Context, user core.UserID, r core.MonthlyReport) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	title := ports.MonthlyTitle(user, r.Year, r.Month)

	if err := c.ensureSheet(ctx, title); err != nil {
		return err
	}

	rng := fmt.Sprintf("'%s'!A:C", title)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", title, err)
	}

	vr := &gsheet.ValueRange{Values: ReportRows(r)}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("'%s'!A1", title), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write sheet %s: %w", title, err)
	}

	slog.InfoContext(ctx, "Monthly report exported",
		applog.FieldUserID, user,
		applog.FieldYear, r.Year,
		applog.FieldMonth, r.Month,
		"sheet", title,
		applog.FieldOperation, applog.OpExport)
	return nil
}

func (c *Client) ensureSheet(ctx context.Context, title string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	slog.InfoContext(ctx, "Created report sheet", "sheet", title)
	return nil
}

// ReportRows lays a report out as Type | Category | Amount rows, categories
// sorted by name, followed by the net savings line.
func ReportRows(r core.MonthlyReport) [][]interface{} {
	rows := [][]interface{}{{"Type", "Category", "Amount"}}
	rows = appendTotals(rows, string(core.Income), r.TotalIncome)
	rows = appendTotals(rows, string(core.Expense), r.TotalExpenses)
	rows = append(rows,
		[]interface{}{"", "", ""},
		[]interface{}{"NET", "Net savings", r.NetSavings.String()},
	)
	return rows
}

func appendTotals(rows [][]interface{}, typ string, totals core.CategoryTotals) [][]interface{} {
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, []interface{}{typ, name, totals[name].String()})
	}
	return rows
}
