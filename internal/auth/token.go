package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"finman/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "finman"

// ErrEmptySecret is returned by NewIssuer when no signing secret is configured.
var ErrEmptySecret = errors.New("token secret must not be empty")

// Issuer signs and verifies HS256 bearer tokens whose subject is a user id.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. now may be nil to use the system clock.
func NewIssuer(secret string, ttl time.Duration, now func() time.Time) (*Issuer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue returns a signed token for user and its expiry.
func (i *Issuer) Issue(user core.UserID) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(i.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    issuerName,
		Subject:   user.String(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Verify checks signature, issuer and validity window of token and returns
// its subject. Every failure is reported as core.ErrUnauthorized.
func (i *Issuer) Verify(token string) (core.UserID, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrUnauthorized, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid token subject", core.ErrUnauthorized)
	}
	return core.UserID(id), nil
}
