package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"finman/internal/core"
	applog "finman/internal/log"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

const minPasswordLength = 6

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

type (
	// PasswordHasher hashes passwords and checks them against a stored hash.
	// Compare returns an error wrapping core.ErrUnauthorized on mismatch.
	PasswordHasher interface {
		Hash(password string) (string, error)
		Compare(hash, password string) error
	}

	// TokenIssuer mints bearer tokens and turns them back into a user id.
	TokenIssuer interface {
		Issue(user core.UserID) (token string, expires time.Time, err error)
		Verify(token string) (core.UserID, error)
	}
)

// Registration is the data needed to open an account.
type Registration struct {
	Username    string
	Password    string
	FullName    string
	PhoneNumber string
}

// Session is the result of a successful login.
type Session struct {
	User      core.User
	Token     string
	ExpiresAt time.Time
}

// UserService registers users and converts credentials into the verified
// core.UserID every other service expects.
type UserService struct {
	store  Store
	hasher PasswordHasher
	tokens TokenIssuer
	clock  Clock
}

func NewUserService(store Store, hasher PasswordHasher, tokens TokenIssuer, clock Clock) *UserService {
	return &UserService{store: store, hasher: hasher, tokens: tokens, clock: clock}
}

// Register creates a user. Usernames are e-mail addresses stored lowercase.
func (s *UserService) Register(ctx context.Context, r Registration) (core.User, error) {
	if err := r.validate(); err != nil {
		return core.User{}, err
	}
	username := strings.ToLower(strings.TrimSpace(r.Username))

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return core.User{}, err
	}

	var created core.User
	err = s.store.Atomic(ctx, func(tx Tx) error {
		exists, err := tx.UsernameExists(ctx, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: user with username %q already exists", core.ErrDuplicateResource, username)
		}
		created, err = tx.CreateUser(ctx, core.User{
			Username:     username,
			PasswordHash: hash,
			FullName:     strings.TrimSpace(r.FullName),
			PhoneNumber:  strings.TrimSpace(r.PhoneNumber),
			CreatedAt:    s.clock.now(),
		})
		return err
	})
	if err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User registered successfully",
		applog.FieldUserID, created.ID,
		applog.FieldUsername, created.Username,
		applog.FieldOperation, applog.OpRegister)
	return created, nil
}

// Login checks the credentials and issues a token. Unknown users and wrong
// passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var u core.User
	err := s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		u, err = tx.GetUserByUsername(ctx, username)
		return err
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return Session{}, fmt.Errorf("%w: invalid credentials", core.ErrUnauthorized)
		}
		return Session{}, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return Session{}, err
	}

	token, expires, err := s.tokens.Issue(u.ID)
	if err != nil {
		return Session{}, err
	}

	slog.InfoContext(ctx, "User logged in successfully",
		applog.FieldUserID, u.ID,
		applog.FieldUsername, u.Username,
		applog.FieldOperation, applog.OpLogin)
	return Session{User: u, Token: token, ExpiresAt: expires}, nil
}

// Authenticate resolves a bearer token to an existing user.
func (s *UserService) Authenticate(ctx context.Context, token string) (core.User, error) {
	if strings.TrimSpace(token) == "" {
		return core.User{}, fmt.Errorf("%w: not authenticated", core.ErrUnauthorized)
	}
	id, err := s.tokens.Verify(token)
	if err != nil {
		return core.User{}, err
	}

	var u core.User
	err = s.store.Snapshot(ctx, func(tx Tx) error {
		var err error
		u, err = tx.GetUser(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, fmt.Errorf("%w: user not found", core.ErrUnauthorized)
		}
		return core.User{}, err
	}
	return u, nil
}

func (r Registration) validate() error {
	var problems []string

	username := strings.TrimSpace(r.Username)
	if username == "" {
		problems = append(problems, "username is required")
	} else if addr, err := mail.ParseAddress(username); err != nil || addr.Address != username {
		problems = append(problems, "username must be a valid email address")
	}
	if r.Password == "" {
		problems = append(problems, "password is required")
	} else if len(r.Password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	} else if len([]byte(r.Password)) > maxPasswordBytes {
		problems = append(problems, fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	if strings.TrimSpace(r.FullName) == "" {
		problems = append(problems, "full name is required")
	}
	phone := strings.TrimSpace(r.PhoneNumber)
	if phone == "" {
		problems = append(problems, "phone number is required")
	} else if !phonePattern.MatchString(phone) {
		problems = append(problems, "phone number must be valid")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", core.ErrInvalidRequest, strings.Join(problems, "; "))
	}
	return nil
}
