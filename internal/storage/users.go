package storage

import (
	"context"
	"fmt"

	"finman/internal/core"
)

const userColumns = `id, username, password_hash, full_name, phone_number, created_at`

func (t *sqlTx) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	var id int64
	err := t.queryRow(ctx, `
		INSERT INTO users (username, password_hash, full_name, phone_number, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		u.Username, u.PasswordHash, u.FullName, u.PhoneNumber, u.CreatedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return core.User{}, translate(err, "user", u.Username)
	}
	u.ID = core.UserID(id)
	return u, nil
}

func (t *sqlTx) GetUser(ctx context.Context, id core.UserID) (core.User, error) {
	u, err := scanUser(t.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, int64(id)))
	return u, translate(err, "user", id)
}

func (t *sqlTx) GetUserByUsername(ctx context.Context, username string) (core.User, error) {
	u, err := scanUser(t.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	return u, translate(err, "user", username)
}

func (t *sqlTx) UsernameExists(ctx context.Context, username string) (bool, error) {
	ok, err := t.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`, username)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return ok, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u       core.User
		id      int64
		created timeColumn
	)
	if err := row.Scan(&id, &u.Username, &u.PasswordHash, &u.FullName, &u.PhoneNumber, &created); err != nil {
		return core.User{}, err
	}
	u.ID = core.UserID(id)
	u.CreatedAt = created.Time
	return u, nil
}
