package core

import (
	"strings"

	"github.com/google/uuid"
)

// TransactionType discriminates which aggregate bucket an amount contributes
// to. It is a closed set, never a free-form string.
type TransactionType string

const (
	TypeIncome     TransactionType = "income"
	TypeExpense    TransactionType = "expense"
	TypeSavings    TransactionType = "savings"
	TypeInvestment TransactionType = "investment"
)

// IsValid reports whether t is one of the four known types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeSavings, TypeInvestment:
		return true
	default:
		return false
	}
}

// CategoryUncategorized is the sentinel an absent or empty category is
// normalized to for grouping.
const CategoryUncategorized = "uncategorized"

// Transaction is a single dated monetary event. ID is assigned at creation
// and immutable for the record's lifetime; the remaining fields change only
// through explicit update operations.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	Date        Date            `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      Money           `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
}

// NormalizedCategory returns the category used for grouping, mapping an
// empty or whitespace-only category to CategoryUncategorized.
func (t Transaction) NormalizedCategory() string {
	c := strings.TrimSpace(t.Category)
	if c == "" {
		return CategoryUncategorized
	}
	return c
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return NewValidationError("type", "must be income, expense, savings or investment")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return NewValidationError("description", "must not be empty")
	}
	return nil
}

// TransactionDraft is a transaction before the repository assigns its id.
type TransactionDraft struct {
	Date        Date            `json:"date"`
	Type        TransactionType `json:"type"`
	Amount      Money           `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
}

func (d TransactionDraft) Validate() error {
	return Transaction{
		ID:          uuid.Nil,
		Date:        d.Date,
		Type:        d.Type,
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
	}.Validate()
}

// TransactionPatch is a partial update. Nil fields leave the existing value
// untouched; the merged record is re-validated as a whole.
type TransactionPatch struct {
	Date        *Date            `json:"date,omitempty"`
	Type        *TransactionType `json:"type,omitempty"`
	Amount      *Money           `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// ApplyTo merges the patch into a copy of tx.
func (p TransactionPatch) ApplyTo(tx Transaction) Transaction {
	if p.Date != nil {
		tx.Date = *p.Date
	}
	if p.Type != nil {
		tx.Type = *p.Type
	}
	if p.Amount != nil {
		tx.Amount = *p.Amount
	}
	if p.Description != nil {
		tx.Description = *p.Description
	}
	if p.Category != nil {
		tx.Category = *p.Category
	}
	return tx
}

// AnnualGoals holds the per-year targets. At most one record exists per year;
// setting goals for a year that already has a record replaces it.
type AnnualGoals struct {
	Year               int   `json:"year"`
	ExpectedProfit     Money `json:"expectedProfit"`     // target income for the year
	MonthlyBudget      Money `json:"monthlyBudget"`      // expense ceiling per month
	EmergencyReserve   Money `json:"emergencyReserve"`   // cumulative savings target for the year
	PlannedInvestments Money `json:"plannedInvestments"` // cumulative investment target for the year
}

func (g AnnualGoals) Validate() error {
	if g.Year <= 0 {
		return NewValidationError("year", "must be a positive integer")
	}
	if g.ExpectedProfit.Cents < 0 || g.MonthlyBudget.Cents < 0 ||
		g.EmergencyReserve.Cents < 0 || g.PlannedInvestments.Cents < 0 {
		return NewValidationError("goals", "targets must not be negative")
	}
	return nil
}
