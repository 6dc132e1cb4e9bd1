package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 1, 15), d)
	assert.Equal(t, "2024-01-15", d.String())

	for _, bad := range []string{"", "2024-1-15", "15/01/2024", "2024-02-30", "yesterday"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidRequest, bad)
	}
}

func TestParseOptionalDate(t *testing.T) {
	d, err := ParseOptionalDate("  ")
	require.NoError(t, err)
	assert.Nil(t, d)

	d, err = ParseOptionalDate("2025-03-01")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, NewDate(2025, 3, 1), *d)
}

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	ts := time.Date(2024, 6, 30, 23, 59, 0, 0, loc)
	assert.Equal(t, NewDate(2024, 6, 30), DateOf(ts))
}

func TestDateComparisons(t *testing.T) {
	a, b := NewDate(2024, 1, 1), NewDate(2024, 1, 2)
	assert.True(t, b.After(a))
	assert.True(t, a.Before(b))
	assert.True(t, a.AddDays(1).Equal(b))
	assert.False(t, a.After(a))
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 12, 5))
	require.NoError(t, err)
	assert.Equal(t, `"2024-12-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(NewDate(2024, 12, 5)))

	var wrapped struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-01-15"}`), &wrapped))
	assert.Equal(t, NewDate(2024, 1, 15), wrapped.D)

	assert.ErrorIs(t, json.Unmarshal([]byte(`"2024-01-15T00:00:00Z"`), &back), ErrInvalidRequest)
	assert.ErrorIs(t, json.Unmarshal([]byte(`20240115`), &back), ErrInvalidRequest)
}

func TestMonthRange(t *testing.T) {
	first, last := MonthRange(2024, 2)
	assert.Equal(t, NewDate(2024, 2, 1), first)
	assert.Equal(t, NewDate(2024, 2, 29), last)

	first, last = MonthRange(2023, 12)
	assert.Equal(t, NewDate(2023, 12, 1), first)
	assert.Equal(t, NewDate(2023, 12, 31), last)
}

func TestOwner(t *testing.T) {
	def := DefaultOwner()
	assert.True(t, def.IsDefault())
	assert.True(t, def.VisibleTo(7))
	assert.False(t, def.Is(7))

	own := OwnedBy(7)
	assert.False(t, own.IsDefault())
	assert.True(t, own.Is(7))
	assert.True(t, own.VisibleTo(7))
	assert.False(t, own.VisibleTo(8))
	id, ok := own.User()
	assert.True(t, ok)
	assert.Equal(t, UserID(7), id)
}

func TestParseTransactionType(t *testing.T) {
	typ, err := ParseTransactionType("INCOME")
	require.NoError(t, err)
	assert.Equal(t, Income, typ)

	_, err = ParseTransactionType("income")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{Amount: dec("10"), Date: NewDate(2024, 1, 1), Category: "Food", Type: Expense}
	require.NoError(t, good.Validate())

	bads := []Transaction{
		{Amount: dec("0"), Date: NewDate(2024, 1, 1), Category: "Food", Type: Expense},
		{Amount: dec("10"), Category: "Food", Type: Expense},
		{Amount: dec("10"), Date: NewDate(2024, 1, 1), Category: " ", Type: Expense},
		{Amount: dec("10"), Date: NewDate(2024, 1, 1), Category: "Food", Type: "OTHER"},
	}
	for i, tx := range bads {
		assert.ErrorIs(t, tx.Validate(), ErrInvalidRequest, "case %d", i)
	}
}

func TestGoalValidate(t *testing.T) {
	require.NoError(t, Goal{Name: "Car", TargetAmount: dec("100")}.Validate())
	assert.ErrorIs(t, Goal{Name: "", TargetAmount: dec("100")}.Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, Goal{Name: "Car", TargetAmount: dec("0")}.Validate(), ErrInvalidRequest)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(ErrNotFound))
	assert.Equal(t, KindForbidden, KindOf(ErrForbidden))
	assert.Equal(t, KindInvalidRequest, KindOf(ErrInvalidRequest))
	assert.Equal(t, KindDuplicateResource, KindOf(ErrDuplicateResource))
	assert.Equal(t, KindUnauthorized, KindOf(ErrUnauthorized))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
