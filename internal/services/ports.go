package services

import (
	"context"

	"finman/internal/core"

	"github.com/shopspring/decimal"
)

// Ports for the durable store. Every service call runs inside exactly one
// Store transaction: mutations through Atomic, reads through Snapshot.
type (
	Store interface {
		// Atomic runs fn in a read-write transaction that is committed only
		// when fn returns nil.
		Atomic(ctx context.Context, fn func(Tx) error) error
		// Snapshot runs fn in a read-only transaction that sees one
		// consistent state of the store.
		Snapshot(ctx context.Context, fn func(Tx) error) error
		Ping(ctx context.Context) error
		Close() error
	}

	Tx interface {
		UserStore
		CategoryStore
		TransactionStore
		GoalStore
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id core.UserID) (core.User, error)
		GetUserByUsername(ctx context.Context, username string) (core.User, error)
		UsernameExists(ctx context.Context, username string) (bool, error)
	}

	CategoryStore interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id int64) error
		// ListDefaultCategories returns default categories in insertion order.
		ListDefaultCategories(ctx context.Context) ([]core.Category, error)
		// ListUserCategories returns the categories owned by user in insertion order.
		ListUserCategories(ctx context.Context, user core.UserID) ([]core.Category, error)
		GetDefaultCategory(ctx context.Context, name string) (core.Category, error)
		GetUserCategory(ctx context.Context, user core.UserID, name string) (core.Category, error)
		// CategoryNameTaken reports whether name is used by a default category
		// or by one of user's categories.
		CategoryNameTaken(ctx context.Context, user core.UserID, name string) (bool, error)
	}

	TransactionStore interface {
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) error
		DeleteTransaction(ctx context.Context, user core.UserID, id int64) error
		GetTransaction(ctx context.Context, user core.UserID, id int64) (core.Transaction, error)
		// ListTransactions returns matching transactions ordered by date
		// descending, then creation time descending.
		ListTransactions(ctx context.Context, user core.UserID, f TransactionFilter) ([]core.Transaction, error)
		CategoryInUse(ctx context.Context, user core.UserID, category string) (bool, error)
		// SumSince sums amounts of the given type dated on or after since.
		SumSince(ctx context.Context, user core.UserID, typ core.TransactionType, since core.Date) (decimal.Decimal, error)
	}

	GoalStore interface {
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, user core.UserID, id int64) error
		GetGoal(ctx context.Context, user core.UserID, id int64) (core.Goal, error)
		// ListGoals returns the user's goals newest first.
		ListGoals(ctx context.Context, user core.UserID) ([]core.Goal, error)
	}

	// TransactionFilter narrows a transaction listing. Nil or empty fields
	// do not filter.
	TransactionFilter struct {
		From     *core.Date
		To       *core.Date
		Category string
	}

	// EventPublisher receives ledger change notifications after commit.
	EventPublisher interface {
		PublishLedgerEvent(ctx context.Context, e LedgerEvent) error
	}
)

// Store implementations return core.ErrNotFound (possibly wrapped) from the
// Get* and Delete* methods when no row matches, and core.ErrDuplicateResource
// on unique-constraint violations.
