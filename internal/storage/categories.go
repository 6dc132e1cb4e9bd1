package storage

import (
	"context"
	"database/sql"
	"fmt"

	"finman/internal/core"
)

const categoryColumns = `id, name, type, custom, user_id`

func (t *sqlTx) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	var owner sql.NullInt64
	if user, ok := c.Owner.User(); ok {
		owner = sql.NullInt64{Int64: int64(user), Valid: true}
	}

	err := t.queryRow(ctx, `
		INSERT INTO categories (name, type, custom, user_id)
		VALUES (?, ?, ?, ?)
		RETURNING id`,
		c.Name, string(c.Type), c.Custom, owner,
	).Scan(&c.ID)
	if err != nil {
		return core.Category{}, translate(err, "category", c.Name)
	}
	return c, nil
}

func (t *sqlTx) DeleteCategory(ctx context.Context, id int64) error {
	res, err := t.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return translate(err, "category", id)
	}
	return affectOne(res, "category", id)
}

func (t *sqlTx) ListDefaultCategories(ctx context.Context) ([]core.Category, error) {
	return t.listCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id IS NULL ORDER BY id`)
}

func (t *sqlTx) ListUserCategories(ctx context.Context, user core.UserID) ([]core.Category, error) {
	return t.listCategories(ctx, `SELECT `+categoryColumns+` FROM categories WHERE user_id = ? ORDER BY id`, int64(user))
}

func (t *sqlTx) GetDefaultCategory(ctx context.Context, name string) (core.Category, error) {
	c, err := scanCategory(t.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id IS NULL AND name = ?`, name))
	return c, translate(err, "category", name)
}

func (t *sqlTx) GetUserCategory(ctx context.Context, user core.UserID, name string) (core.Category, error) {
	c, err := scanCategory(t.queryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE user_id = ? AND name = ?`, int64(user), name))
	return c, translate(err, "category", name)
}

func (t *sqlTx) CategoryNameTaken(ctx context.Context, user core.UserID, name string) (bool, error) {
	ok, err := t.exists(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE name = ? AND (user_id IS NULL OR user_id = ?)
		)`, name, int64(user))
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return ok, nil
}

func (t *sqlTx) listCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := t.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c     core.Category
		typ   string
		owner sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Name, &typ, &c.Custom, &owner); err != nil {
		return core.Category{}, err
	}
	c.Type = core.TransactionType(typ)
	if owner.Valid {
		c.Owner = core.OwnedBy(core.UserID(owner.Int64))
	} else {
		c.Owner = core.DefaultOwner()
	}
	return c, nil
}
