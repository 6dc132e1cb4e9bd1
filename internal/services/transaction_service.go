package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finman/internal/core"
	applog "finman/internal/log"

	"github.com/shopspring/decimal"
)

// TransactionService applies the ledger rules: transactions are never dated in
// the future and always take their type from the category they reference.
type TransactionService struct {
	store     Store
	publisher EventPublisher
	clock     Clock
}

// NewTransactionService wires the ledger. publisher may be nil, clock may be
// nil to use the system clock.
func NewTransactionService(store Store, publisher EventPublisher, clock Clock) *TransactionService {
	return &TransactionService{store: store, publisher: publisher, clock: clock}
}

// NewTransaction is the caller-supplied part of a transaction.
type NewTransaction struct {
	Amount      decimal.Decimal
	Date        string
	Category    string
	Description string
}

// TransactionPatch holds the fields to change; nil means "leave untouched".
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Date        *string
	Category    *string
	Description *string
}

// Create validates and records a new transaction for user.
func (s *TransactionService) Create(ctx context.Context, user core.UserID, in NewTransaction) (core.Transaction, error) {
	date, err := s.parseLedgerDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := core.ValidateAmount(in.Amount, "amount"); err != nil {
		return core.Transaction{}, err
	}
	if strings.TrimSpace(in.Category) == "" {
		return core.Transaction{}, fmt.Errorf("%w: category is required", core.ErrInvalidRequest)
	}

	var created core.Transaction
	err = s.store.Atomic(ctx, func(tx Tx) error {
		c, err := resolveCategory(ctx, tx, user, in.Category)
		if err != nil {
			return err
		}
		t := core.Transaction{
			UserID:      user,
			Amount:      in.Amount.Round(2),
			Date:        date,
			Category:    c.Name,
			Type:        c.Type,
			Description: in.Description,
			CreatedAt:   s.clock.now(),
		}
		if err := t.Validate(); err != nil {
			return err
		}
		created, err = tx.CreateTransaction(ctx, t)
		return err
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction created",
		applog.FieldUserID, user,
		applog.FieldTransactionID, created.ID,
		applog.FieldCategory, created.Category,
		applog.FieldAmount, created.Amount.StringFixed(2),
		applog.FieldOperation, applog.OpCreate)
	publish(ctx, s.publisher, newLedgerEvent(TransactionCreated, created, s.clock.now()))
	return created, nil
}

// Get returns one of user's transactions. Another user's transaction is
// reported as not found.
func (s *TransactionService) Get(ctx context.Context, user core.UserID, id int64) (core.Transaction, error) {
	var t core.Transaction
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		t, err = tx.GetTransaction(ctx, user, id)
		return err
	})
	return t, err
}

// Update applies patch to one of user's transactions. A category change
// re-derives the type from the new category.
func (s *TransactionService) Update(ctx context.Context, user core.UserID, id int64, patch TransactionPatch) (core.Transaction, error) {
	var (
		updated core.Transaction
		before  core.Transaction
	)
	err := s.store.Atomic(ctx, func(tx Tx) error {
		t, err := tx.GetTransaction(ctx, user, id)
		if err != nil {
			return err
		}
		before = t

		if patch.Amount != nil {
			if err := core.ValidateAmount(*patch.Amount, "amount"); err != nil {
				return err
			}
			t.Amount = patch.Amount.Round(2)
		}
		if patch.Date != nil {
			d, err := s.parseLedgerDate(*patch.Date)
			if err != nil {
				return err
			}
			t.Date = d
		}
		if patch.Category != nil {
			if strings.TrimSpace(*patch.Category) == "" {
				return fmt.Errorf("%w: category is required", core.ErrInvalidRequest)
			}
			c, err := resolveCategory(ctx, tx, user, *patch.Category)
			if err != nil {
				return err
			}
			t.Category = c.Name
			t.Type = c.Type
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}

		if err := t.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateTransaction(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Transaction updated",
		applog.FieldUserID, user,
		applog.FieldTransactionID, id,
		applog.FieldOperation, applog.OpUpdate)

	now := s.clock.now()
	publish(ctx, s.publisher, newLedgerEvent(TransactionUpdated, updated, now))
	if before.Date.Year() != updated.Date.Year() || before.Date.Month() != updated.Date.Month() {
		// The old month's report changed too.
		publish(ctx, s.publisher, newLedgerEvent(TransactionUpdated, before, now))
	}
	return updated, nil
}

// List returns user's transactions matching f, newest first.
func (s *TransactionService) List(ctx context.Context, user core.UserID, f TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		out, err = tx.ListTransactions(ctx, user, f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

// Delete removes one of user's transactions.
func (s *TransactionService) Delete(ctx context.Context, user core.UserID, id int64) error {
	var deleted core.Transaction
	err := s.store.Atomic(ctx, func(tx Tx) error {
		t, err := tx.GetTransaction(ctx, user, id)
		if err != nil {
			return err
		}
		deleted = t
		return tx.DeleteTransaction(ctx, user, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		applog.FieldUserID, user,
		applog.FieldTransactionID, id,
		applog.FieldOperation, applog.OpDelete)
	publish(ctx, s.publisher, newLedgerEvent(TransactionDeleted, deleted, s.clock.now()))
	return nil
}

// parseLedgerDate parses raw and rejects dates after today.
func (s *TransactionService) parseLedgerDate(raw string) (core.Date, error) {
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, err
	}
	if d.After(s.clock.today()) {
		return core.Date{}, fmt.Errorf("%w: transaction date cannot be in the future", core.ErrInvalidRequest)
	}
	return d, nil
}
