package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

type (
	// UserID is the verified identity of the caller. It is obtained once at
	// the boundary and threaded through every service call.
	UserID int64

	TransactionType string

	// Date is a calendar date without time of day, stored as UTC midnight.
	Date struct {
		time.Time
	}

	// Owner tells whether a category is a default one, visible to every user,
	// or belongs to exactly one user.
	Owner struct {
		user  UserID
		owned bool
	}

	User struct {
		ID           UserID
		Username     string
		PasswordHash string
		FullName     string
		PhoneNumber  string
		CreatedAt    time.Time
	}

	Category struct {
		ID     int64
		Name   string
		Type   TransactionType
		Custom bool
		Owner  Owner
	}

	// Transaction carries a copy of its category's name and type taken at
	// write time; later category changes never rewrite history.
	Transaction struct {
		ID          int64
		UserID      UserID
		Amount      decimal.Decimal
		Date        Date
		Category    string
		Type        TransactionType
		Description string
		CreatedAt   time.Time
	}

	Goal struct {
		ID           int64
		UserID       UserID
		Name         string
		TargetAmount decimal.Decimal
		StartDate    Date
		TargetDate   Date
		CreatedAt    time.Time
	}
)

func (id UserID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTransactionType accepts INCOME or EXPENSE.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.TrimSpace(s)); t {
	case Income, Expense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: type must be INCOME or EXPENSE", ErrInvalidRequest)
	}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// DefaultOwner marks a global category.
func DefaultOwner() Owner {
	return Owner{}
}

// OwnedBy marks a category belonging to user.
func OwnedBy(user UserID) Owner {
	return Owner{user: user, owned: true}
}

// IsDefault reports whether the category is global.
func (o Owner) IsDefault() bool {
	return !o.owned
}

// User returns the owning user of a custom category.
func (o Owner) User() (UserID, bool) {
	return o.user, o.owned
}

// Is reports whether the category is owned by user.
func (o Owner) Is(user UserID) bool {
	return o.owned && o.user == user
}

// VisibleTo reports whether user may see the category.
func (o Owner) VisibleTo(user UserID) bool {
	return !o.owned || o.user == user
}

func (o Owner) String() string {
	if !o.owned {
		return "default"
	}
	return "user:" + o.user.String()
}

// NewDate creates a new Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: invalid date format %q, use YYYY-MM-DD", ErrInvalidRequest, s)
	}
	return Date{Time: t}, nil
}

// ParseOptionalDate parses s, returning nil when s is empty.
func ParseOptionalDate(s string) (*Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.Time.Before(o.Time)
}

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Time.Equal(o.Time)
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON renders d as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses a "YYYY-MM-DD" string. null leaves d unchanged.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidRequest)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year, month int) (Date, Date) {
	first := NewDate(year, month, 1)
	return first, Date{Time: first.AddDate(0, 1, -1)}
}

// YearRange returns January 1st and December 31st of year.
func YearRange(year int) (Date, Date) {
	return NewDate(year, 1, 1), NewDate(year, 12, 31)
}

// Validate checks the caller-supplied fields of a transaction.
func (t Transaction) Validate() error {
	if err := ValidateAmount(t.Amount, "amount"); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(t.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidRequest)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: invalid transaction type %q", ErrInvalidRequest, t.Type)
	}
	return nil
}

// Validate checks name and target amount; date rules depend on "today" and
// live in the goal service.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: goal name is required", ErrInvalidRequest)
	}
	return ValidateAmount(g.TargetAmount, "target amount")
}
