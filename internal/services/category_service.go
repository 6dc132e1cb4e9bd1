package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"finman/internal/core"
	applog "finman/internal/log"
)

// DefaultCategories are seeded once, when the store holds no default category.
var DefaultCategories = []struct {
	Name string
	Type core.TransactionType
}{
	{"Salary", core.Income},
	{"Food", core.Expense},
	{"Rent", core.Expense},
	{"Transportation", core.Expense},
	{"Entertainment", core.Expense},
	{"Healthcare", core.Expense},
	{"Utilities", core.Expense},
}

// CategoryService is the category registry: it owns visibility, per-user
// uniqueness and default-category protection.
type CategoryService struct {
	store Store
}

func NewCategoryService(store Store) *CategoryService {
	return &CategoryService{store: store}
}

// SeedDefaults inserts DefaultCategories unless a default category already
// exists. It returns the number of categories inserted.
func (s *CategoryService) SeedDefaults(ctx context.Context) (int, error) {
	inserted := 0
	err := s.store.Atomic(ctx, func(tx Tx) error {
		existing, err := tx.ListDefaultCategories(ctx)
		if err != nil {
			return fmt.Errorf("list default categories: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		for _, dc := range DefaultCategories {
			if _, err := tx.CreateCategory(ctx, core.Category{
				Name:   dc.Name,
				Type:   dc.Type,
				Custom: false,
				Owner:  core.DefaultOwner(),
			}); err != nil {
				return fmt.Errorf("create default category %q: %w", dc.Name, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if inserted == 0 {
		slog.InfoContext(ctx, "Default categories already exist, skipping initialization")
	} else {
		slog.InfoContext(ctx, "Default categories initialized",
			applog.FieldOperation, applog.OpSeed,
			"count", inserted)
	}
	return inserted, nil
}

// ListVisible returns every default category followed by the user's own,
// each group in insertion order.
func (s *CategoryService) ListVisible(ctx context.Context, user core.UserID) ([]core.Category, error) {
	var out []core.Category
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		defaults, err := tx.ListDefaultCategories(ctx)
		if err != nil {
			return fmt.Errorf("list default categories: %w", err)
		}
		owned, err := tx.ListUserCategories(ctx, user)
		if err != nil {
			return fmt.Errorf("list user categories: %w", err)
		}
		out = append(defaults, owned...)
		return nil
	})
	return out, err
}

// Create adds a custom category for user. The name must not collide with a
// default category or one of the user's own (case-sensitive).
func (s *CategoryService) Create(ctx context.Context, user core.UserID, name string, typ core.TransactionType) (core.Category, error) {
	if strings.TrimSpace(name) == "" {
		return core.Category{}, fmt.Errorf("%w: category name is required", core.ErrInvalidRequest)
	}
	if !typ.Valid() {
		return core.Category{}, fmt.Errorf("%w: type must be INCOME or EXPENSE", core.ErrInvalidRequest)
	}

	var created core.Category
	err := s.store.Atomic(ctx, func(tx Tx) error {
		taken, err := tx.CategoryNameTaken(ctx, user, name)
		if err != nil {
			return fmt.Errorf("check category name: %w", err)
		}
		if taken {
			return fmt.Errorf("%w: category with name %q already exists", core.ErrDuplicateResource, name)
		}
		created, err = tx.CreateCategory(ctx, core.Category{
			Name:   name,
			Type:   typ,
			Custom: true,
			Owner:  core.OwnedBy(user),
		})
		return err
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "Category created",
		applog.FieldUserID, user,
		applog.FieldCategory, created.Name,
		applog.FieldCategoryType, created.Type,
		applog.FieldOperation, applog.OpCreate)
	return created, nil
}

// Delete removes one of the user's custom categories. Default categories can
// never be deleted, and a category still referenced by one of the user's
// transactions is kept.
func (s *CategoryService) Delete(ctx context.Context, user core.UserID, name string) error {
	err := s.store.Atomic(ctx, func(tx Tx) error {
		_, err := tx.GetDefaultCategory(ctx, name)
		switch {
		case err == nil:
			return fmt.Errorf("%w: cannot delete default category", core.ErrForbidden)
		case !errors.Is(err, core.ErrNotFound):
			return fmt.Errorf("get default category: %w", err)
		}

		c, err := tx.GetUserCategory(ctx, user, name)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("%w: category with name %q", core.ErrNotFound, name)
			}
			return fmt.Errorf("get user category: %w", err)
		}
		if !c.Custom || c.Owner.IsDefault() {
			return fmt.Errorf("%w: cannot delete default category", core.ErrForbidden)
		}
		if !c.Owner.Is(user) {
			return fmt.Errorf("%w: cannot delete category belonging to another user", core.ErrForbidden)
		}

		inUse, err := tx.CategoryInUse(ctx, user, name)
		if err != nil {
			return fmt.Errorf("check category usage: %w", err)
		}
		if inUse {
			return fmt.Errorf("%w: cannot delete category that is in use by transactions", core.ErrInvalidRequest)
		}
		return tx.DeleteCategory(ctx, c.ID)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category deleted",
		applog.FieldUserID, user,
		applog.FieldCategory, name,
		applog.FieldOperation, applog.OpDelete)
	return nil
}

// Resolve finds the category named name that user can see, preferring the
// user's own over a default one.
func (s *CategoryService) Resolve(ctx context.Context, user core.UserID, name string) (core.Category, error) {
	var c core.Category
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		c, err = resolveCategory(ctx, tx, user, name)
		return err
	})
	return c, err
}

func resolveCategory(ctx context.Context, tx Tx, user core.UserID, name string) (core.Category, error) {
	c, err := tx.GetUserCategory(ctx, user, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return core.Category{}, fmt.Errorf("get user category: %w", err)
	}

	c, err = tx.GetDefaultCategory(ctx, name)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, core.ErrNotFound) {
		return core.Category{}, fmt.Errorf("%w: category with name %q", core.ErrNotFound, name)
	}
	return core.Category{}, fmt.Errorf("get default category: %w", err)
}
