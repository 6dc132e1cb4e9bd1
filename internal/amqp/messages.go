package amqp

import (
	"encoding/json"
	"fmt"

	"finman/internal/services"
)

const contentType = "application/json"

// EncodeLedgerEvent serialises e for the wire.
func EncodeLedgerEvent(e services.LedgerEvent) ([]byte, error) {
	return json.Marshal(e)
}

// DecodeLedgerEvent parses and sanity-checks a message body.
func DecodeLedgerEvent(body []byte) (services.LedgerEvent, error) {
	var e services.LedgerEvent
	if err := json.Unmarshal(body, &e); err != nil {
		return services.LedgerEvent{}, fmt.Errorf("unmarshal ledger event: %w", err)
	}
	switch e.Type {
	case services.TransactionCreated, services.TransactionUpdated, services.TransactionDeleted:
	default:
		return services.LedgerEvent{}, fmt.Errorf("unknown ledger event type %q", e.Type)
	}
	if e.UserID <= 0 {
		return services.LedgerEvent{}, fmt.Errorf("ledger event without user")
	}
	if e.Month < 1 || e.Month > 12 {
		return services.LedgerEvent{}, fmt.Errorf("ledger event month %d out of range", e.Month)
	}
	return e, nil
}
