// Package auth turns credentials into the verified user identity consumed by
// the services: bcrypt password hashes and signed, expiring bearer tokens.
package auth

import (
	"errors"
	"fmt"

	"finman/internal/core"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and checks passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher using cost, or bcrypt.DefaultCost when cost is
// out of bcrypt's range.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Compare returns core.ErrUnauthorized when password does not match hash.
func (h *Hasher) Compare(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
	default:
		return fmt.Errorf("compare password: %w", err)
	}
}
