package services

import (
	"context"
	"log/slog"
	"time"

	"finman/internal/core"
)

// LedgerEventType names the kind of change a LedgerEvent reports.
type LedgerEventType string

const (
	TransactionCreated LedgerEventType = "transaction.created"
	TransactionUpdated LedgerEventType = "transaction.updated"
	TransactionDeleted LedgerEventType = "transaction.deleted"
)

// LedgerEvent tells downstream consumers which month of which user's ledger
// changed. It is emitted only after the change is committed.
type LedgerEvent struct {
	Type          LedgerEventType `json:"type"`
	UserID        core.UserID     `json:"user_id"`
	TransactionID int64           `json:"transaction_id"`
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Clock returns the current instant; its location defines "today".
type Clock func() time.Time

func (c Clock) today() core.Date {
	if c == nil {
		return core.DateOf(time.Now())
	}
	return core.DateOf(c())
}

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// publish never fails the caller: the change is already committed.
func publish(ctx context.Context, p EventPublisher, e LedgerEvent) {
	if p == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping ledger event", "type", e.Type)
		return
	}
	if err := p.PublishLedgerEvent(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", e.Type,
			"user_id", e.UserID,
			"transaction_id", e.TransactionID,
			"error", err)
	}
}

func newLedgerEvent(typ LedgerEventType, t core.Transaction, at time.Time) LedgerEvent {
	return LedgerEvent{
		Type:          typ,
		UserID:        t.UserID,
		TransactionID: t.ID,
		Year:          t.Date.Year(),
		Month:         int(t.Date.Month()),
		Timestamp:     at,
	}
}
