// Package core provides the domain model of the ledger together with the
// monetary rounding and formatting rules every other package relies on.
//
// This file contains the Monetary Value Utilities: money is rounded half-up to
// two fractional digits, and an exact-zero result collapses to a canonical,
// unscaled zero. Goal-progress percentages follow a separate rule: rounded
// half-up to two digits, trailing zeros trimmed, but never below one digit.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	minMoney = decimal.New(1, -2)
)

// Money is a display-ready monetary value. The zero value is the canonical zero.
type Money struct {
	value decimal.Decimal
}

// RoundMoney rounds d half-up to two fractional digits.
//
// Examples:
//
//	RoundMoney(1.005)  -> "1.01"
//	RoundMoney(5000)   -> "5000.00"
//	RoundMoney(0)      -> "0"
//	RoundMoney(0.004)  -> "0"
func RoundMoney(d decimal.Decimal) Money {
	// decimal.Round rounds half away from zero, which is half-up for both signs.
	r := d.Round(2)
	if r.IsZero() {
		return Money{}
	}
	return Money{value: r}
}

// MoneyFromCents builds a Money from an integer amount of cents.
func MoneyFromCents(cents int64) Money {
	return RoundMoney(decimal.New(cents, -2))
}

// Decimal returns the rounded value.
func (m Money) Decimal() decimal.Decimal {
	return m.value
}

// IsZero reports whether m is the canonical zero.
func (m Money) IsZero() bool {
	return m.value.IsZero()
}

// Cents returns m expressed in cents.
func (m Money) Cents() int64 {
	return m.value.Shift(2).IntPart()
}

// String renders m with exactly two fractional digits, or "0" for zero.
func (m Money) String() string {
	if m.value.IsZero() {
		return "0"
	}
	return m.value.StringFixed(2)
}

// MarshalJSON renders m as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string and rounds it like
// RoundMoney. null leaves m unchanged.
func (m *Money) UnmarshalJSON(b []byte) error {
	d, ok, err := decodeDecimal(b)
	if err != nil || !ok {
		return err
	}
	*m = RoundMoney(d)
	return nil
}

// Equal compares two Money values numerically.
func (m Money) Equal(o Money) bool {
	return m.value.Equal(o.value)
}

// Percentage is a goal-progress percentage ready for display.
type Percentage struct {
	value decimal.Decimal
}

// FormatPercentage rounds d half-up to two fractional digits. The rendered form
// has trailing zeros stripped but always keeps at least one fractional digit:
// 20.00 -> "20.0", 13.333 -> "13.33", 100 -> "100.0", 0 -> "0.0".
func FormatPercentage(d decimal.Decimal) Percentage {
	return Percentage{value: d.Round(2)}
}

// Decimal returns the rounded value.
func (p Percentage) Decimal() decimal.Decimal {
	return p.value
}

func (p Percentage) String() string {
	if p.value.IsZero() {
		return "0.0"
	}
	// decimal.String already trims trailing zeros.
	s := p.value.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// MarshalJSON renders p as a bare JSON number.
func (p Percentage) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string and rounds it like
// FormatPercentage. null leaves p unchanged.
func (p *Percentage) UnmarshalJSON(b []byte) error {
	d, ok, err := decodeDecimal(b)
	if err != nil || !ok {
		return err
	}
	*p = FormatPercentage(d)
	return nil
}

func decodeDecimal(b []byte) (decimal.Decimal, bool, error) {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(strings.Trim(s, `"`))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: invalid number %s", ErrInvalidRequest, s)
	}
	return d, true, nil
}

// ProgressPercentage returns progress*100/target rounded half-up to two
// digits, or zero when target is zero.
func ProgressPercentage(progress, target decimal.Decimal) Percentage {
	if target.IsZero() {
		return Percentage{}
	}
	return FormatPercentage(progress.Mul(hundred).DivRound(target, 2))
}

// ClampZero returns d, or zero when d is negative.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ValidateAmount checks that d is at least 0.01 before any rounding.
func ValidateAmount(d decimal.Decimal, field string) error {
	if d.LessThan(minMoney) {
		return fmt.Errorf("%w: %s must be greater than 0", ErrInvalidRequest, field)
	}
	return nil
}

// ParseAmount parses a decimal string. It accepts both dot (12.34) and comma
// (12,34) separators and rejects negative or malformed input.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidRequest)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, fmt.Errorf("%w: amount must be unsigned", ErrInvalidRequest)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidRequest, s)
	}
	return d, nil
}
