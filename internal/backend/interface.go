// Package backend assembles the store, event publisher and report exporter
// selected by the configuration.
package backend

import (
	"errors"

	"finman/internal/services"
	"finman/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Backend bundles the infrastructure the services run on. Publisher is nil
// when ledger events are disabled.
type Backend struct {
	Store     services.Store
	Publisher services.EventPublisher
	Exporter  sheets.ReportExporter

	cleanups []CleanupFunc
}

// Close releases resources in reverse order of acquisition.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		if err := b.cleanups[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.cleanups = nil
	return errors.Join(errs...)
}

func (b *Backend) onClose(fn CleanupFunc) {
	b.cleanups = append(b.cleanups, fn)
}
