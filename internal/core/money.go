// Package core defines the finance tracker's domain types and validation
// rules: transactions, annual goals, money, dates, and the derived
// monthly/annual aggregate shapes.
package core

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount in minor units (cents) of the single fixed
// currency. All aggregation sums cents so addition stays exact regardless of
// input order.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string such as "12.34" (comma accepted as
// decimal separator) to cents, rounding half-up on the third decimal place.
// Negative and malformed values are rejected; zero is allowed here so that
// goal targets may be unset, the strictly-positive rule for transaction
// amounts lives in Validate.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, NewValidationError("amount", "empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, NewValidationError("amount", "not a decimal number")
	}
	if d.IsNegative() {
		return Money{}, NewValidationError("amount", "must not be negative")
	}
	cents := d.Round(2).Mul(decimal.NewFromInt(100)).IntPart()
	return Money{Cents: cents}, nil
}

// Validate enforces the transaction-amount rule: strictly positive.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return NewValidationError("amount", "must be greater than zero")
	}
	return nil
}

// Decimal returns the amount as an exact decimal value.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount as a plain decimal string, e.g. "12.34".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Money serializes as a decimal string so snapshots stay human-editable.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// Tolerate bare JSON numbers from older snapshots.
		s = strings.Trim(string(data), `"`)
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns the difference of two amounts. The result may be negative.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Cents == 0
}
