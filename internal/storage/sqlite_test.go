package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"finman/internal/services"
	"finman/internal/storage/storetest"

	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) services.Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "finman.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreConformance(t *testing.T) {
	storetest.Run(t, newSQLiteStore)
}

func TestPostgresStoreConformance(t *testing.T) {
	url := os.Getenv("FINMAN_TEST_POSTGRES_URL")
	if url == "" {
		t.Skip("FINMAN_TEST_POSTGRES_URL not set")
	}
	storetest.Run(t, func(t *testing.T) services.Store {
		s, err := OpenPostgres(context.Background(), url)
		require.NoError(t, err)
		_, err = s.db.Exec(`TRUNCATE goals, transactions, categories, users RESTART IDENTITY`)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestOpenSQLiteIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "finman.db")
	s, err := OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close())
}

func TestRebind(t *testing.T) {
	q := `SELECT 1 FROM t WHERE a = ? AND b = ?`
	require.Equal(t, q, SQLite.rebind(q))
	require.Equal(t, `SELECT 1 FROM t WHERE a = $1 AND b = $2`, Postgres.rebind(q))
}
