package storage

import (
	"context"
	"fmt"

	"finman/internal/core"
)

const goalColumns = `id, user_id, name, target_cents, start_date, target_date, created_at`

func (t *sqlTx) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.TargetAmount = fromCents(toCents(g.TargetAmount))
	err := t.queryRow(ctx, `
		INSERT INTO goals (user_id, name, target_cents, start_date, target_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		int64(g.UserID), g.Name, toCents(g.TargetAmount), g.StartDate.String(), g.TargetDate.String(), g.CreatedAt.UTC(),
	).Scan(&g.ID)
	if err != nil {
		return core.Goal{}, translate(err, "goal", g.Name)
	}
	return g, nil
}

func (t *sqlTx) UpdateGoal(ctx context.Context, g core.Goal) error {
	res, err := t.exec(ctx, `
		UPDATE goals
		SET name = ?, target_cents = ?, start_date = ?, target_date = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, toCents(g.TargetAmount), g.StartDate.String(), g.TargetDate.String(),
		g.ID, int64(g.UserID),
	)
	if err != nil {
		return translate(err, "goal", g.ID)
	}
	return affectOne(res, "goal", g.ID)
}

func (t *sqlTx) DeleteGoal(ctx context.Context, user core.UserID, id int64) error {
	res, err := t.exec(ctx, `DELETE FROM goals WHERE id = ? AND user_id = ?`, id, int64(user))
	if err != nil {
		return translate(err, "goal", id)
	}
	return affectOne(res, "goal", id)
}

func (t *sqlTx) GetGoal(ctx context.Context, user core.UserID, id int64) (core.Goal, error) {
	g, err := scanGoal(t.queryRow(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`, id, int64(user)))
	return g, translate(err, "goal", id)
}

func (t *sqlTx) ListGoals(ctx context.Context, user core.UserID) ([]core.Goal, error) {
	rows, err := t.query(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY created_at DESC, id DESC`, int64(user))
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g       core.Goal
		userID  int64
		cents   int64
		start   dateColumn
		target  dateColumn
		created timeColumn
	)
	if err := row.Scan(&g.ID, &userID, &g.Name, &cents, &start, &target, &created); err != nil {
		return core.Goal{}, err
	}
	g.UserID = core.UserID(userID)
	g.TargetAmount = fromCents(cents)
	g.StartDate = start.Date
	g.TargetDate = target.Date
	g.CreatedAt = created.Time
	return g, nil
}
