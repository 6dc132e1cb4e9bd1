package memory

import (
	"context"
	"testing"

	"finman/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporterReplacesByTitle(t *testing.T) {
	e := New()
	ctx := context.Background()

	first := core.MonthlyReport{Year: 2024, Month: 1, NetSavings: core.RoundMoney(decimal.NewFromInt(10))}
	second := core.MonthlyReport{Year: 2024, Month: 1, NetSavings: core.RoundMoney(decimal.NewFromInt(20))}
	other := core.MonthlyReport{Year: 2024, Month: 2}

	require.NoError(t, e.ExportMonthlyReport(ctx, 7, first))
	require.NoError(t, e.ExportMonthlyReport(ctx, 7, second))
	require.NoError(t, e.ExportMonthlyReport(ctx, 7, other))

	assert.Equal(t, []string{"u7-2024-01", "u7-2024-02"}, e.Titles())
	got, ok := e.Report("u7-2024-01")
	require.True(t, ok)
	assert.Equal(t, "20.00", got.NetSavings.String())

	_, ok = e.Report("u8-2024-01")
	assert.False(t, ok)
}
