package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"finman/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyReportScenario(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, f.user, "5000.00", "2024-01-15", "Salary")
	f.addTx(t, f.user, "1500.00", "2024-01-15", "Rent")
	f.addTx(t, f.user, "70", "2024-02-01", "Food")     // other month
	f.addTx(t, f.other, "999", "2024-01-15", "Salary") // other user

	r, err := f.reports.Monthly(context.Background(), f.user, 2024, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, r.Month)
	assert.Equal(t, 2024, r.Year)
	require.Len(t, r.TotalIncome, 1)
	require.Len(t, r.TotalExpenses, 1)
	assert.Equal(t, "5000.00", r.TotalIncome["Salary"].String())
	assert.Equal(t, "1500.00", r.TotalExpenses["Rent"].String())
	assert.Equal(t, "3500.00", r.NetSavings.String())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"month":1,"year":2024,"totalIncome":{"Salary":5000.00},"totalExpenses":{"Rent":1500.00},"netSavings":3500.00}`,
		string(b))
}

func TestMonthlyReportEmptyMonth(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, f.user, "10", "2024-03-15", "Food")

	r, err := f.reports.Monthly(context.Background(), f.user, 2024, 2)
	require.NoError(t, err)
	assert.Empty(t, r.TotalIncome)
	assert.Empty(t, r.TotalExpenses)
	assert.True(t, r.NetSavings.IsZero())

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"netSavings":0}`)
	assert.Contains(t, string(b), `"totalIncome":{}`)
}

func TestMonthlyReportBoundsAreInclusive(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, f.user, "1", "2024-02-01", "Food")
	f.addTx(t, f.user, "2", "2024-02-29", "Food")
	f.addTx(t, f.user, "4", "2024-01-31", "Food")
	f.addTx(t, f.user, "8", "2024-03-01", "Food")

	r, err := f.reports.Monthly(context.Background(), f.user, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, "3.00", r.TotalExpenses["Food"].String())
	assert.Equal(t, "-3.00", r.NetSavings.String())
}

func TestMonthlyReportRejectsMonth(t *testing.T) {
	f := newFixture(t)
	for _, m := range []int{0, 13, -1} {
		_, err := f.reports.Monthly(context.Background(), f.user, 2024, m)
		assert.ErrorIs(t, err, core.ErrInvalidRequest, "month %d", m)
	}
}

func TestYearlyReport(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, f.user, "5000", "2024-01-15", "Salary")
	f.addTx(t, f.user, "5000", "2024-06-15", "Salary")
	f.addTx(t, f.user, "1200.10", "2024-03-01", "Rent")
	f.addTx(t, f.user, "30.20", "2024-03-02", "Food")
	f.addTx(t, f.user, "100", "2023-12-31", "Salary")

	r, err := f.reports.Yearly(context.Background(), f.user, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, r.Year)
	assert.Equal(t, "10000.00", r.TotalIncome["Salary"].String())
	assert.Equal(t, "1200.10", r.TotalExpenses["Rent"].String())
	assert.Equal(t, "30.20", r.TotalExpenses["Food"].String())
	assert.Equal(t, "8769.70", r.NetSavings.String())

	empty, err := f.reports.Yearly(context.Background(), f.user, 1999)
	require.NoError(t, err)
	assert.Empty(t, empty.TotalIncome)
	assert.Equal(t, "0", empty.NetSavings.String())
}

func TestReportNetZeroIsCanonical(t *testing.T) {
	f := newFixture(t)
	f.addTx(t, f.user, "250.50", "2024-05-01", "Salary")
	f.addTx(t, f.user, "250.50", "2024-05-02", "Food")

	r, err := f.reports.Monthly(context.Background(), f.user, 2024, 5)
	require.NoError(t, err)
	assert.Equal(t, "0", r.NetSavings.String())
}
