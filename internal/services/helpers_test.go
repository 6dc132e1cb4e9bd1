package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"finman/internal/core"
	"finman/internal/services"
	"finman/internal/storage/memory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fixedNow is "today" for every service under test: 2024-06-15.
var fixedNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type recordingPublisher struct {
	mu     sync.Mutex
	events []services.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, e services.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Events() []services.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]services.LedgerEvent(nil), p.events...)
}

type fixture struct {
	store        *memory.Store
	publisher    *recordingPublisher
	categories   *services.CategoryService
	transactions *services.TransactionService
	goals        *services.GoalService
	reports      *services.ReportService
	user         core.UserID
	other        core.UserID
}

// newFixture returns services over a fresh memory store with seeded default
// categories and two users.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	pub := &recordingPublisher{}

	f := &fixture{
		store:        store,
		publisher:    pub,
		categories:   services.NewCategoryService(store),
		transactions: services.NewTransactionService(store, pub, fixedClock),
		goals:        services.NewGoalService(store, fixedClock),
		reports:      services.NewReportService(store),
	}

	_, err := f.categories.SeedDefaults(ctx)
	require.NoError(t, err)

	f.user = f.createUser(t, "alice@example.com")
	f.other = f.createUser(t, "bob@example.com")
	return f
}

func (f *fixture) createUser(t *testing.T, username string) core.UserID {
	t.Helper()
	var id core.UserID
	require.NoError(t, f.store.Atomic(context.Background(), func(tx services.Tx) error {
		u, err := tx.CreateUser(context.Background(), core.User{Username: username, PasswordHash: "x", CreatedAt: fixedNow})
		id = u.ID
		return err
	}))
	return id
}

func (f *fixture) addTx(t *testing.T, user core.UserID, amount, date, category string) core.Transaction {
	t.Helper()
	tr, err := f.transactions.Create(context.Background(), user, services.NewTransaction{
		Amount:   dec(amount),
		Date:     date,
		Category: category,
	})
	require.NoError(t, err)
	return tr
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T { return &v }
