// Package memory is a process-local services.Store used by tests and by the
// "memory" data backend. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"finman/internal/core"
	"finman/internal/services"

	"github.com/shopspring/decimal"
)

type state struct {
	nextID       int64
	users        []core.User
	categories   []core.Category
	transactions []core.Transaction
	goals        []core.Goal
}

func (s *state) clone() *state {
	return &state{
		nextID:       s.nextID,
		users:        slices.Clone(s.users),
		categories:   slices.Clone(s.categories),
		transactions: slices.Clone(s.transactions),
		goals:        slices.Clone(s.goals),
	}
}

func (s *state) id() int64 {
	s.nextID++
	return s.nextID
}

// Store keeps all rows in memory. Atomic works on a copy that replaces the
// current state only when fn succeeds.
type Store struct {
	mu    sync.RWMutex
	state *state
}

var _ services.Store = (*Store)(nil)

func New() *Store {
	return &Store{state: &state{}}
}

func (s *Store) Atomic(_ context.Context, fn func(services.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&tx{st: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *Store) Snapshot(_ context.Context, fn func(services.Tx) error) error {
	s.mu.RLock()
	snap := s.state.clone()
	s.mu.RUnlock()
	return fn(&tx{st: snap})
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

type tx struct {
	st *state
}

func notFound(what string, key any) error {
	return fmt.Errorf("%w: %s %v", core.ErrNotFound, what, key)
}

func duplicate(what string, key any) error {
	return fmt.Errorf("%w: %s %v already exists", core.ErrDuplicateResource, what, key)
}

// Users

func (t *tx) CreateUser(_ context.Context, u core.User) (core.User, error) {
	for _, existing := range t.st.users {
		if existing.Username == u.Username {
			return core.User{}, duplicate("user", u.Username)
		}
	}
	u.ID = core.UserID(t.st.id())
	t.st.users = append(t.st.users, u)
	return u, nil
}

func (t *tx) GetUser(_ context.Context, id core.UserID) (core.User, error) {
	for _, u := range t.st.users {
		if u.ID == id {
			return u, nil
		}
	}
	return core.User{}, notFound("user", id)
}

func (t *tx) GetUserByUsername(_ context.Context, username string) (core.User, error) {
	for _, u := range t.st.users {
		if u.Username == username {
			return u, nil
		}
	}
	return core.User{}, notFound("user", username)
}

func (t *tx) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := t.GetUserByUsername(ctx, username)
	return err == nil, nil
}

// Categories

func (t *tx) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	for _, existing := range t.st.categories {
		if existing.Name == c.Name && existing.Owner == c.Owner {
			return core.Category{}, duplicate("category", c.Name)
		}
	}
	c.ID = t.st.id()
	t.st.categories = append(t.st.categories, c)
	return c, nil
}

func (t *tx) DeleteCategory(_ context.Context, id int64) error {
	i := slices.IndexFunc(t.st.categories, func(c core.Category) bool { return c.ID == id })
	if i < 0 {
		return notFound("category", id)
	}
	t.st.categories = slices.Delete(t.st.categories, i, i+1)
	return nil
}

func (t *tx) ListDefaultCategories(context.Context) ([]core.Category, error) {
	return t.filterCategories(func(c core.Category) bool { return c.Owner.IsDefault() }), nil
}

func (t *tx) ListUserCategories(_ context.Context, user core.UserID) ([]core.Category, error) {
	return t.filterCategories(func(c core.Category) bool { return c.Owner.Is(user) }), nil
}

func (t *tx) GetDefaultCategory(_ context.Context, name string) (core.Category, error) {
	for _, c := range t.st.categories {
		if c.Owner.IsDefault() && c.Name == name {
			return c, nil
		}
	}
	return core.Category{}, notFound("category", name)
}

func (t *tx) GetUserCategory(_ context.Context, user core.UserID, name string) (core.Category, error) {
	for _, c := range t.st.categories {
		if c.Owner.Is(user) && c.Name == name {
			return c, nil
		}
	}
	return core.Category{}, notFound("category", name)
}

func (t *tx) CategoryNameTaken(_ context.Context, user core.UserID, name string) (bool, error) {
	return slices.ContainsFunc(t.st.categories, func(c core.Category) bool {
		return c.Name == name && c.Owner.VisibleTo(user)
	}), nil
}

func (t *tx) filterCategories(keep func(core.Category) bool) []core.Category {
	var out []core.Category
	for _, c := range t.st.categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Transactions

func (t *tx) CreateTransaction(_ context.Context, tr core.Transaction) (core.Transaction, error) {
	tr.ID = t.st.id()
	tr.Amount = tr.Amount.Round(2)
	t.st.transactions = append(t.st.transactions, tr)
	return tr, nil
}

func (t *tx) UpdateTransaction(_ context.Context, tr core.Transaction) error {
	i := t.transactionIndex(tr.UserID, tr.ID)
	if i < 0 {
		return notFound("transaction", tr.ID)
	}
	tr.Amount = tr.Amount.Round(2)
	tr.CreatedAt = t.st.transactions[i].CreatedAt
	t.st.transactions[i] = tr
	return nil
}

func (t *tx) DeleteTransaction(_ context.Context, user core.UserID, id int64) error {
	i := t.transactionIndex(user, id)
	if i < 0 {
		return notFound("transaction", id)
	}
	t.st.transactions = slices.Delete(t.st.transactions, i, i+1)
	return nil
}

func (t *tx) GetTransaction(_ context.Context, user core.UserID, id int64) (core.Transaction, error) {
	i := t.transactionIndex(user, id)
	if i < 0 {
		return core.Transaction{}, notFound("transaction", id)
	}
	return t.st.transactions[i], nil
}

func (t *tx) ListTransactions(_ context.Context, user core.UserID, f services.TransactionFilter) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, tr := range t.st.transactions {
		switch {
		case tr.UserID != user:
		case f.From != nil && tr.Date.Before(*f.From):
		case f.To != nil && tr.Date.After(*f.To):
		case f.Category != "" && tr.Category != f.Category:
		default:
			out = append(out, tr)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out, nil
}

func (t *tx) CategoryInUse(_ context.Context, user core.UserID, category string) (bool, error) {
	return slices.ContainsFunc(t.st.transactions, func(tr core.Transaction) bool {
		return tr.UserID == user && tr.Category == category
	}), nil
}

func (t *tx) SumSince(_ context.Context, user core.UserID, typ core.TransactionType, since core.Date) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, tr := range t.st.transactions {
		if tr.UserID == user && tr.Type == typ && !tr.Date.Before(since) {
			sum = sum.Add(tr.Amount)
		}
	}
	return sum, nil
}

func (t *tx) transactionIndex(user core.UserID, id int64) int {
	return slices.IndexFunc(t.st.transactions, func(tr core.Transaction) bool {
		return tr.ID == id && tr.UserID == user
	})
}

// Goals

func (t *tx) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	g.ID = t.st.id()
	g.TargetAmount = g.TargetAmount.Round(2)
	t.st.goals = append(t.st.goals, g)
	return g, nil
}

func (t *tx) UpdateGoal(_ context.Context, g core.Goal) error {
	i := t.goalIndex(g.UserID, g.ID)
	if i < 0 {
		return notFound("goal", g.ID)
	}
	g.TargetAmount = g.TargetAmount.Round(2)
	g.CreatedAt = t.st.goals[i].CreatedAt
	t.st.goals[i] = g
	return nil
}

func (t *tx) DeleteGoal(_ context.Context, user core.UserID, id int64) error {
	i := t.goalIndex(user, id)
	if i < 0 {
		return notFound("goal", id)
	}
	t.st.goals = slices.Delete(t.st.goals, i, i+1)
	return nil
}

func (t *tx) GetGoal(_ context.Context, user core.UserID, id int64) (core.Goal, error) {
	i := t.goalIndex(user, id)
	if i < 0 {
		return core.Goal{}, notFound("goal", id)
	}
	return t.st.goals[i], nil
}

func (t *tx) ListGoals(_ context.Context, user core.UserID) ([]core.Goal, error) {
	var out []core.Goal
	for _, g := range t.st.goals {
		if g.UserID == user {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (t *tx) goalIndex(user core.UserID, id int64) int {
	return slices.IndexFunc(t.st.goals, func(g core.Goal) bool {
		return g.ID == id && g.UserID == user
	})
}
