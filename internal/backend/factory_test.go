package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finman/internal/config"
	"finman/internal/services"
	sheetsmem "finman/internal/sheets/memory"
	"finman/internal/storage"
	"finman/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemoryBackend(t *testing.T) {
	cfg := &config.Config{DataBackend: config.BackendMemory}

	b, err := NewFactory(nil).Open(context.Background(), cfg)
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &memory.Store{}, b.Store)
	assert.IsType(t, &sheetsmem.Exporter{}, b.Exporter)
	assert.Nil(t, b.Publisher)
	assert.NoError(t, b.Store.Ping(context.Background()))
}

func TestOpenSQLiteBackend(t *testing.T) {
	cfg := &config.Config{
		DataBackend:  config.BackendSQLite,
		SQLiteDBPath: filepath.Join(t.TempDir(), "nested", "finman.db"),
	}

	b, err := NewFactory(nil).Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &storage.SQLStore{}, b.Store)

	err = b.Store.Snapshot(context.Background(), func(tx services.Tx) error {
		_, err := tx.ListDefaultCategories(context.Background())
		return err
	})
	assert.NoError(t, err)
	assert.NoError(t, b.Close())
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := NewFactory(nil).Open(context.Background(), &config.Config{DataBackend: "sheets"})
	assert.ErrorContains(t, err, "unsupported backend type: sheets")

	_, err = NewFactory(nil).Open(context.Background(), nil)
	assert.Error(t, err)
}

func TestOpenExporterNeedsCredentials(t *testing.T) {
	cfg := &config.Config{
		DataBackend:         config.BackendMemory,
		GoogleSpreadsheetID: "sheet-id",
	}

	_, err := NewFactory(nil).Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to initialize Google Sheets client")
}

func TestBackendCloseRunsCleanupsInReverse(t *testing.T) {
	var order []int
	b := &Backend{}
	b.onClose(func() error { order = append(order, 1); return nil })
	b.onClose(func() error { order = append(order, 2); return errors.New("boom") })

	err := b.Close()
	assert.EqualError(t, err, "boom")
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, b.Close())
}
