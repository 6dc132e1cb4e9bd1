// Package storage persists users, categories, transactions and goals in a SQL
// database. The same queries serve SQLite (modernc.org/sqlite) and PostgreSQL
// (pgx); only placeholders, migrations and snapshot options differ.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finman/internal/services"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const sqlitePragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// SQLStore implements services.Store on top of database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

var _ services.Store = (*SQLStore)(nil)

// OpenSQLite opens (creating it if needed) and migrates the SQLite database
// at path.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	dsn := path + sqlitePragmas

	if err := RunMigrations(SQLite, dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open(SQLite.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serialises writers, so SQLite never reports busy.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "SQLite store ready", "path", path)
	return &SQLStore{db: db, dialect: SQLite}, nil
}

// OpenPostgres connects to and migrates the PostgreSQL database at url.
func OpenPostgres(ctx context.Context, url string) (*SQLStore, error) {
	if err := RunMigrations(Postgres, url); err != nil {
		return nil, err
	}

	db, err := sql.Open(Postgres.driverName(), url)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.InfoContext(ctx, "PostgreSQL store ready")
	return &SQLStore{db: db, dialect: Postgres}, nil
}

func (s *SQLStore) Dialect() Dialect {
	return s.dialect
}

func (s *SQLStore) Atomic(ctx context.Context, fn func(services.Tx) error) error {
	return s.run(ctx, nil, fn)
}

func (s *SQLStore) Snapshot(ctx context.Context, fn func(services.Tx) error) error {
	return s.run(ctx, s.dialect.snapshotOptions(), fn)
}

func (s *SQLStore) run(ctx context.Context, opts *sql.TxOptions, fn func(services.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlTx{tx: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			slog.ErrorContext(ctx, "Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sqlTx implements services.Tx within one database transaction.
type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *sqlTx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.rebind(query), args...)
}

func (t *sqlTx) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.rebind(query), args...)
}

func (t *sqlTx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.rebind(query), args...)
}

// exists runs a SELECT EXISTS(...) query.
func (t *sqlTx) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	if err := t.queryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// affectOne turns a zero-row UPDATE or DELETE into core.ErrNotFound.
func affectOne(res sql.Result, what string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound(what, id)
	}
	return nil
}
