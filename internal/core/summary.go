package core

import "github.com/shopspring/decimal"

// CategoryTotals maps a category name to the amount accumulated for it.
// Categories with no transactions in the period are absent.
type CategoryTotals map[string]Money

// MonthlyReport summarises one calendar month of a user's ledger.
type MonthlyReport struct {
	Month         int            `json:"month"`
	Year          int            `json:"year"`
	TotalIncome   CategoryTotals `json:"totalIncome"`
	TotalExpenses CategoryTotals `json:"totalExpenses"`
	NetSavings    Money          `json:"netSavings"`
}

// YearlyReport summarises one calendar year of a user's ledger.
type YearlyReport struct {
	Year          int            `json:"year"`
	TotalIncome   CategoryTotals `json:"totalIncome"`
	TotalExpenses CategoryTotals `json:"totalExpenses"`
	NetSavings    Money          `json:"netSavings"`
}

// Aggregate groups transactions by type and category name. Each addend is
// rounded to cents before it is accumulated.
func Aggregate(txs []Transaction) (income, expenses CategoryTotals, net Money) {
	incomeSums := map[string]decimal.Decimal{}
	expenseSums := map[string]decimal.Decimal{}
	netIncome, netExpenses := decimal.Zero, decimal.Zero

	for _, t := range txs {
		amount := t.Amount.Round(2)
		if t.Type == Income {
			incomeSums[t.Category] = incomeSums[t.Category].Add(amount)
			netIncome = netIncome.Add(amount)
		} else {
			expenseSums[t.Category] = expenseSums[t.Category].Add(amount)
			netExpenses = netExpenses.Add(amount)
		}
	}

	return toTotals(incomeSums), toTotals(expenseSums), RoundMoney(netIncome.Sub(netExpenses))
}

func toTotals(sums map[string]decimal.Decimal) CategoryTotals {
	out := make(CategoryTotals, len(sums))
	for name, sum := range sums {
		out[name] = RoundMoney(sum)
	}
	return out
}

// GoalProgress holds the derived, never persisted, figures of a goal.
type GoalProgress struct {
	Target     Money
	Progress   Money
	Percentage Percentage
	Remaining  Money
}

// ComputeGoalProgress derives progress figures from the income and expense
// totals accumulated since the goal's start date. Progress never goes below
// zero, however deep the user is into expenses.
func ComputeGoalProgress(target, incomeSum, expenseSum decimal.Decimal) GoalProgress {
	target = target.Round(2)
	progress := ClampZero(incomeSum.Sub(expenseSum)).Round(2)

	return GoalProgress{
		Target:     RoundMoney(target),
		Progress:   RoundMoney(progress),
		Percentage: ProgressPercentage(progress, target),
		Remaining:  RoundMoney(ClampZero(target.Sub(progress))),
	}
}
