package storage

import (
	"context"
	"fmt"
	"strings"

	"finman/internal/core"
	"finman/internal/services"

	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, amount_cents, date, category, type, description, created_at`

func (t *sqlTx) CreateTransaction(ctx context.Context, tr core.Transaction) (core.Transaction, error) {
	tr.Amount = fromCents(toCents(tr.Amount))
	err := t.queryRow(ctx, `
		INSERT INTO transactions (user_id, amount_cents, date, category, type, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		int64(tr.UserID), toCents(tr.Amount), tr.Date.String(), tr.Category, string(tr.Type), tr.Description, tr.CreatedAt.UTC(),
	).Scan(&tr.ID)
	if err != nil {
		return core.Transaction{}, translate(err, "transaction", tr.Category)
	}
	return tr, nil
}

func (t *sqlTx) UpdateTransaction(ctx context.Context, tr core.Transaction) error {
	res, err := t.exec(ctx, `
		UPDATE transactions
		SET amount_cents = ?, date = ?, category = ?, type = ?, description = ?
		WHERE id = ? AND user_id = ?`,
		toCents(tr.Amount), tr.Date.String(), tr.Category, string(tr.Type), tr.Description,
		tr.ID, int64(tr.UserID),
	)
	if err != nil {
		return translate(err, "transaction", tr.ID)
	}
	return affectOne(res, "transaction", tr.ID)
}

func (t *sqlTx) DeleteTransaction(ctx context.Context, user core.UserID, id int64) error {
	res, err := t.exec(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, int64(user))
	if err != nil {
		return translate(err, "transaction", id)
	}
	return affectOne(res, "transaction", id)
}

func (t *sqlTx) GetTransaction(ctx context.Context, user core.UserID, id int64) (core.Transaction, error) {
	tr, err := scanTransaction(t.queryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, int64(user)))
	return tr, translate(err, "transaction", id)
}

func (t *sqlTx) ListTransactions(ctx context.Context, user core.UserID, f services.TransactionFilter) ([]core.Transaction, error) {
	where := []string{"user_id = ?"}
	args := []any{int64(user)}
	if f.From != nil {
		where = append(where, "date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		where = append(where, "date <= ?")
		args = append(args, f.To.String())
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}

	rows, err := t.query(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY date DESC, created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		tr, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (t *sqlTx) CategoryInUse(ctx context.Context, user core.UserID, category string) (bool, error) {
	ok, err := t.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE user_id = ? AND category = ?)`,
		int64(user), category)
	if err != nil {
		return false, fmt.Errorf("check category usage: %w", err)
	}
	return ok, nil
}

func (t *sqlTx) SumSince(ctx context.Context, user core.UserID, typ core.TransactionType, since core.Date) (decimal.Decimal, error) {
	var cents int64
	err := t.queryRow(ctx, `
		SELECT CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT)
		FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ?`,
		int64(user), string(typ), since.String(),
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s since %s: %w", typ, since, err)
	}
	return fromCents(cents), nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tr      core.Transaction
		userID  int64
		cents   int64
		date    dateColumn
		typ     string
		created timeColumn
	)
	if err := row.Scan(&tr.ID, &userID, &cents, &date, &tr.Category, &typ, &tr.Description, &created); err != nil {
		return core.Transaction{}, err
	}
	tr.UserID = core.UserID(userID)
	tr.Amount = fromCents(cents)
	tr.Date = date.Date
	tr.Type = core.TransactionType(typ)
	tr.CreatedAt = created.Time
	return tr, nil
}

// toCents rounds half-up to whole cents.
func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
