package services

import (
	"context"
	"fmt"
	"log/slog"

	"finman/internal/core"
	applog "finman/internal/log"

	"github.com/shopspring/decimal"
)

// GoalService manages savings goals. Progress is never stored: it is derived
// from the ledger on every read.
type GoalService struct {
	store Store
	clock Clock
}

func NewGoalService(store Store, clock Clock) *GoalService {
	return &GoalService{store: store, clock: clock}
}

// NewGoal is the caller-supplied part of a goal. An empty StartDate means today.
type NewGoal struct {
	Name         string
	TargetAmount decimal.Decimal
	TargetDate   string
	StartDate    string
}

// GoalPatch holds the fields to change; nil means "leave untouched".
type GoalPatch struct {
	TargetAmount *decimal.Decimal
	TargetDate   *string
}

// GoalView is a goal together with its freshly computed progress.
type GoalView struct {
	core.Goal
	Progress core.GoalProgress
}

// Create validates and stores a new goal for user.
func (s *GoalService) Create(ctx context.Context, user core.UserID, in NewGoal) (GoalView, error) {
	today := s.clock.today()

	target, err := core.ParseDate(in.TargetDate)
	if err != nil {
		return GoalView{}, err
	}
	start := today
	if in.StartDate != "" {
		if start, err = core.ParseDate(in.StartDate); err != nil {
			return GoalView{}, err
		}
	}
	if err := checkTargetDate(target, today); err != nil {
		return GoalView{}, err
	}
	if err := core.ValidateAmount(in.TargetAmount, "target amount"); err != nil {
		return GoalView{}, err
	}
	if start.After(target) {
		return GoalView{}, fmt.Errorf("%w: start date cannot be after target date", core.ErrInvalidRequest)
	}

	g := core.Goal{
		UserID:       user,
		Name:         in.Name,
		TargetAmount: in.TargetAmount.Round(2),
		StartDate:    start,
		TargetDate:   target,
		CreatedAt:    s.clock.now(),
	}
	if err := g.Validate(); err != nil {
		return GoalView{}, err
	}

	var view GoalView
	err = s.store.Atomic(ctx, func(tx Tx) error {
		created, err := tx.CreateGoal(ctx, g)
		if err != nil {
			return err
		}
		view, err = computeProgress(ctx, tx, created)
		return err
	})
	if err != nil {
		return GoalView{}, err
	}

	slog.InfoContext(ctx, "Goal created",
		applog.FieldUserID, user,
		applog.FieldGoalID, view.ID,
		applog.FieldOperation, applog.OpCreate)
	return view, nil
}

// Get returns one of user's goals with its progress.
func (s *GoalService) Get(ctx context.Context, user core.UserID, id int64) (GoalView, error) {
	var view GoalView
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		g, err := tx.GetGoal(ctx, user, id)
		if err != nil {
			return err
		}
		view, err = computeProgress(ctx, tx, g)
		return err
	})
	return view, err
}

// List returns user's goals newest first, each with its progress. Every goal
// is evaluated against the whole ledger, so overlapping goals count the same
// transactions.
func (s *GoalService) List(ctx context.Context, user core.UserID) ([]GoalView, error) {
	var views []GoalView
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		goals, err := tx.ListGoals(ctx, user)
		if err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		views = make([]GoalView, 0, len(goals))
		for _, g := range goals {
			v, err := computeProgress(ctx, tx, g)
			if err != nil {
				return err
			}
			views = append(views, v)
		}
		return nil
	})
	return views, err
}

// Update changes the target amount and/or target date of one of user's goals.
// A new target date must be in the future and not before the start date.
func (s *GoalService) Update(ctx context.Context, user core.UserID, id int64, patch GoalPatch) (GoalView, error) {
	today := s.clock.today()

	var view GoalView
	err := s.store.Atomic(ctx, func(tx Tx) error {
		g, err := tx.GetGoal(ctx, user, id)
		if err != nil {
			return err
		}
		if patch.TargetAmount != nil {
			if err := core.ValidateAmount(*patch.TargetAmount, "target amount"); err != nil {
				return err
			}
			g.TargetAmount = patch.TargetAmount.Round(2)
		}
		if patch.TargetDate != nil {
			target, err := core.ParseDate(*patch.TargetDate)
			if err != nil {
				return err
			}
			if err := checkTargetDate(target, today); err != nil {
				return err
			}
			if g.StartDate.After(target) {
				return fmt.Errorf("%w: start date cannot be after target date", core.ErrInvalidRequest)
			}
			g.TargetDate = target
		}
		if err := g.Validate(); err != nil {
			return err
		}
		if err := tx.UpdateGoal(ctx, g); err != nil {
			return err
		}
		view, err = computeProgress(ctx, tx, g)
		return err
	})
	if err != nil {
		return GoalView{}, err
	}

	slog.InfoContext(ctx, "Goal updated",
		applog.FieldUserID, user,
		applog.FieldGoalID, id,
		applog.FieldOperation, applog.OpUpdate)
	return view, nil
}

// Delete removes one of user's goals.
func (s *GoalService) Delete(ctx context.Context, user core.UserID, id int64) error {
	err := s.store.Atomic(ctx, func(tx Tx) error {
		return tx.DeleteGoal(ctx, user, id)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Goal deleted",
		applog.FieldUserID, user,
		applog.FieldGoalID, id,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

func checkTargetDate(target, today core.Date) error {
	if !target.After(today) {
		return fmt.Errorf("%w: target date must be in the future", core.ErrInvalidRequest)
	}
	return nil
}

// computeProgress sums the user's income and expenses since the goal's start
// date, within the caller's transaction.
func computeProgress(ctx context.Context, tx Tx, g core.Goal) (GoalView, error) {
	income, err := tx.SumSince(ctx, g.UserID, core.Income, g.StartDate)
	if err != nil {
		return GoalView{}, fmt.Errorf("sum income: %w", err)
	}
	expenses, err := tx.SumSince(ctx, g.UserID, core.Expense, g.StartDate)
	if err != nil {
		return GoalView{}, fmt.Errorf("sum expenses: %w", err)
	}
	return GoalView{Goal: g, Progress: core.ComputeGoalProgress(g.TargetAmount, income, expenses)}, nil
}
