package main

import (
	"context"
	"encoding/json"
	"io"

	"finman/internal/backend"
	"finman/internal/services"
)

func (a *app) factory() *backend.Factory {
	return backend.NewFactory(a.logger)
}

// withStore opens the configured store, applying pending migrations, and
// closes it once fn returns.
func (a *app) withStore(ctx context.Context, fn func(services.Store) error) error {
	store, err := a.factory().OpenStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
