// Package storetest holds the behaviour every services.Store implementation
// must share, run against each backend from its own tests.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"finman/internal/core"
	"finman/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, ready store. It registers its own cleanup.
type Factory func(t *testing.T) services.Store

var errRollback = errors.New("rollback")

// Run executes the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Categories", func(t *testing.T) { testCategories(t, newStore(t)) })
	t.Run("Transactions", func(t *testing.T) { testTransactions(t, newStore(t)) })
	t.Run("Goals", func(t *testing.T) { testGoals(t, newStore(t)) })
	t.Run("AtomicRollsBack", func(t *testing.T) { testAtomicRollback(t, newStore(t)) })
}

func atomic(t *testing.T, s services.Store, fn func(services.Tx) error) {
	t.Helper()
	require.NoError(t, s.Atomic(context.Background(), fn))
}

// CreateUser inserts a user and returns it.
func CreateUser(t *testing.T, s services.Store, username string) core.User {
	t.Helper()
	var u core.User
	atomic(t, s, func(tx services.Tx) error {
		var err error
		u, err = tx.CreateUser(context.Background(), core.User{
			Username:     username,
			PasswordHash: "hash",
			FullName:     "Test User",
			PhoneNumber:  "+1234567890",
			CreatedAt:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		})
		return err
	})
	return u
}

func testUsers(t *testing.T, s services.Store) {
	ctx := context.Background()
	u := CreateUser(t, s, "alice@example.com")
	assert.NotZero(t, u.ID)

	err := s.Atomic(ctx, func(tx services.Tx) error {
		_, err := tx.CreateUser(ctx, core.User{Username: "alice@example.com", PasswordHash: "x", CreatedAt: time.Now()})
		return err
	})
	assert.ErrorIs(t, err, core.ErrDuplicateResource)

	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		got, err := tx.GetUserByUsername(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "Test User", got.FullName)

		byID, err := tx.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Username, byID.Username)

		exists, err := tx.UsernameExists(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = tx.UsernameExists(ctx, "bob@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = tx.GetUser(ctx, u.ID+100)
		assert.ErrorIs(t, err, core.ErrNotFound)
		return nil
	}))
}

func testCategories(t *testing.T, s services.Store) {
	ctx := context.Background()
	alice := CreateUser(t, s, "alice@example.com")
	bob := CreateUser(t, s, "bob@example.com")

	atomic(t, s, func(tx services.Tx) error {
		for _, c := range []core.Category{
			{Name: "Salary", Type: core.Income, Owner: core.DefaultOwner()},
			{Name: "Food", Type: core.Expense, Owner: core.DefaultOwner()},
			{Name: "Side Hustle", Type: core.Income, Custom: true, Owner: core.OwnedBy(alice.ID)},
			{Name: "Food", Type: core.Expense, Custom: true, Owner: core.OwnedBy(bob.ID)},
		} {
			if _, err := tx.CreateCategory(ctx, c); err != nil {
				return err
			}
		}
		return nil
	})

	err := s.Atomic(ctx, func(tx services.Tx) error {
		_, err := tx.CreateCategory(ctx, core.Category{Name: "Side Hustle", Type: core.Income, Custom: true, Owner: core.OwnedBy(alice.ID)})
		return err
	})
	assert.ErrorIs(t, err, core.ErrDuplicateResource)

	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		defaults, err := tx.ListDefaultCategories(ctx)
		require.NoError(t, err)
		require.Len(t, defaults, 2)
		assert.Equal(t, "Salary", defaults[0].Name)
		assert.Equal(t, "Food", defaults[1].Name)
		assert.True(t, defaults[0].Owner.IsDefault())
		assert.False(t, defaults[0].Custom)

		own, err := tx.ListUserCategories(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, own, 1)
		assert.True(t, own[0].Owner.Is(alice.ID))
		assert.True(t, own[0].Custom)

		taken, err := tx.CategoryNameTaken(ctx, alice.ID, "Food")
		require.NoError(t, err)
		assert.True(t, taken, "default names are taken")

		taken, err = tx.CategoryNameTaken(ctx, bob.ID, "Side Hustle")
		require.NoError(t, err)
		assert.False(t, taken, "other users' names are free")

		_, err = tx.GetUserCategory(ctx, alice.ID, "Food")
		assert.ErrorIs(t, err, core.ErrNotFound)

		c, err := tx.GetUserCategory(ctx, bob.ID, "Food")
		require.NoError(t, err)
		assert.Equal(t, core.Expense, c.Type)

		_, err = tx.GetDefaultCategory(ctx, "Side Hustle")
		assert.ErrorIs(t, err, core.ErrNotFound)
		return nil
	}))

	atomic(t, s, func(tx services.Tx) error {
		c, err := tx.GetUserCategory(ctx, alice.ID, "Side Hustle")
		if err != nil {
			return err
		}
		return tx.DeleteCategory(ctx, c.ID)
	})
	err = s.Atomic(ctx, func(tx services.Tx) error { return tx.DeleteCategory(ctx, 9999) })
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func newTx(user core.UserID, amount string, date core.Date, cat string, typ core.TransactionType, created time.Time) core.Transaction {
	return core.Transaction{
		UserID:    user,
		Amount:    decimal.RequireFromString(amount),
		Date:      date,
		Category:  cat,
		Type:      typ,
		CreatedAt: created,
	}
}

func testTransactions(t *testing.T, s services.Store) {
	ctx := context.Background()
	alice := CreateUser(t, s, "alice@example.com")
	bob := CreateUser(t, s, "bob@example.com")
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	var ids []int64
	atomic(t, s, func(tx services.Tx) error {
		for i, tr := range []core.Transaction{
			newTx(alice.ID, "5000", core.NewDate(2024, 1, 15), "Salary", core.Income, base),
			newTx(alice.ID, "1500", core.NewDate(2024, 1, 15), "Rent", core.Expense, base.Add(time.Minute)),
			newTx(alice.ID, "30.005", core.NewDate(2024, 1, 20), "Food", core.Expense, base.Add(2*time.Minute)),
			newTx(alice.ID, "99", core.NewDate(2023, 12, 31), "Food", core.Expense, base.Add(3*time.Minute)),
			newTx(bob.ID, "10", core.NewDate(2024, 1, 16), "Food", core.Expense, base),
		} {
			created, err := tx.CreateTransaction(ctx, tr)
			if err != nil {
				return err
			}
			require.NotZero(t, created.ID, "transaction %d", i)
			ids = append(ids, created.ID)
		}
		return nil
	})

	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		all, err := tx.ListTransactions(ctx, alice.ID, services.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, ids[2], all[0].ID, "latest date first")
		assert.Equal(t, ids[1], all[1].ID, "same date: newest creation first")
		assert.Equal(t, ids[0], all[2].ID)
		assert.Equal(t, ids[3], all[3].ID)
		assert.Equal(t, "30.01", all[0].Amount.StringFixed(2), "stored rounded half-up")

		from, to := core.MonthRange(2024, 1)
		jan, err := tx.ListTransactions(ctx, alice.ID, services.TransactionFilter{From: &from, To: &to})
		require.NoError(t, err)
		assert.Len(t, jan, 3)

		food, err := tx.ListTransactions(ctx, alice.ID, services.TransactionFilter{Category: "Food"})
		require.NoError(t, err)
		assert.Len(t, food, 2)

		inUse, err := tx.CategoryInUse(ctx, alice.ID, "Rent")
		require.NoError(t, err)
		assert.True(t, inUse)
		inUse, err = tx.CategoryInUse(ctx, bob.ID, "Rent")
		require.NoError(t, err)
		assert.False(t, inUse)

		income, err := tx.SumSince(ctx, alice.ID, core.Income, core.NewDate(2024, 1, 1))
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(5000).Equal(income), income.String())

		expenses, err := tx.SumSince(ctx, alice.ID, core.Expense, core.NewDate(2024, 1, 15))
		require.NoError(t, err)
		assert.Equal(t, "1530.01", expenses.StringFixed(2), "start date is inclusive")

		none, err := tx.SumSince(ctx, bob.ID, core.Income, core.NewDate(2000, 1, 1))
		require.NoError(t, err)
		assert.True(t, none.IsZero())

		_, err = tx.GetTransaction(ctx, bob.ID, ids[0])
		assert.ErrorIs(t, err, core.ErrNotFound, "other users' rows are invisible")
		return nil
	}))

	atomic(t, s, func(tx services.Tx) error {
		tr, err := tx.GetTransaction(ctx, alice.ID, ids[1])
		require.NoError(t, err)
		tr.Amount = decimal.RequireFromString("1600")
		tr.Category = "Housing"
		tr.Description = "new flat"
		return tx.UpdateTransaction(ctx, tr)
	})
	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		tr, err := tx.GetTransaction(ctx, alice.ID, ids[1])
		require.NoError(t, err)
		assert.Equal(t, "1600.00", tr.Amount.StringFixed(2))
		assert.Equal(t, "Housing", tr.Category)
		assert.Equal(t, "new flat", tr.Description)
		assert.True(t, tr.Date.Equal(core.NewDate(2024, 1, 15)))
		return nil
	}))

	err := s.Atomic(ctx, func(tx services.Tx) error { return tx.DeleteTransaction(ctx, bob.ID, ids[0]) })
	assert.ErrorIs(t, err, core.ErrNotFound)
	atomic(t, s, func(tx services.Tx) error { return tx.DeleteTransaction(ctx, alice.ID, ids[0]) })
	err = s.Snapshot(ctx, func(tx services.Tx) error {
		_, err := tx.GetTransaction(ctx, alice.ID, ids[0])
		return err
	})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testGoals(t *testing.T, s services.Store) {
	ctx := context.Background()
	alice := CreateUser(t, s, "alice@example.com")
	base := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)

	var first, second core.Goal
	atomic(t, s, func(tx services.Tx) error {
		var err error
		first, err = tx.CreateGoal(ctx, core.Goal{
			UserID: alice.ID, Name: "Emergency Fund", TargetAmount: decimal.NewFromInt(10000),
			StartDate: core.NewDate(2024, 1, 1), TargetDate: core.NewDate(2025, 1, 1), CreatedAt: base,
		})
		if err != nil {
			return err
		}
		second, err = tx.CreateGoal(ctx, core.Goal{
			UserID: alice.ID, Name: "Holiday", TargetAmount: decimal.RequireFromString("2500.50"),
			StartDate: core.NewDate(2024, 2, 1), TargetDate: core.NewDate(2024, 8, 1), CreatedAt: base.Add(time.Hour),
		})
		return err
	})

	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		goals, err := tx.ListGoals(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, goals, 2)
		assert.Equal(t, second.ID, goals[0].ID, "newest first")
		assert.Equal(t, "2500.50", goals[0].TargetAmount.StringFixed(2))
		assert.True(t, goals[1].StartDate.Equal(core.NewDate(2024, 1, 1)))
		return nil
	}))

	atomic(t, s, func(tx services.Tx) error {
		first.TargetAmount = decimal.NewFromInt(15000)
		first.TargetDate = core.NewDate(2026, 6, 30)
		return tx.UpdateGoal(ctx, first)
	})
	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		g, err := tx.GetGoal(ctx, alice.ID, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "15000.00", g.TargetAmount.StringFixed(2))
		assert.Equal(t, "2026-06-30", g.TargetDate.String())

		_, err = tx.GetGoal(ctx, alice.ID+1, first.ID)
		assert.ErrorIs(t, err, core.ErrNotFound)
		return nil
	}))

	atomic(t, s, func(tx services.Tx) error { return tx.DeleteGoal(ctx, alice.ID, second.ID) })
	err := s.Atomic(ctx, func(tx services.Tx) error { return tx.DeleteGoal(ctx, alice.ID, second.ID) })
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func testAtomicRollback(t *testing.T, s services.Store) {
	ctx := context.Background()
	alice := CreateUser(t, s, "alice@example.com")

	err := s.Atomic(ctx, func(tx services.Tx) error {
		if _, err := tx.CreateCategory(ctx, core.Category{Name: "Gifts", Type: core.Expense, Custom: true, Owner: core.OwnedBy(alice.ID)}); err != nil {
			return err
		}
		return errRollback
	})
	require.ErrorIs(t, err, errRollback)

	require.NoError(t, s.Snapshot(ctx, func(tx services.Tx) error {
		_, err := tx.GetUserCategory(ctx, alice.ID, "Gifts")
		assert.ErrorIs(t, err, core.ErrNotFound)
		return nil
	}))
}
