package models

import "time"

// Expense types.
const (
	TypeEssential    = "essential"
	TypeNonEssential = "non-essential"
)

// Expense is a single spending record owned by one user.
type Expense struct {
	ID               int       `json:"id"`
	UserID           int       `json:"user_id"`
	Amount           float64   `json:"amount"`
	Category         string    `json:"category"` // title case
	ExpenseType      string    `json:"expense_type"`
	Description      string    `json:"description,omitempty"`
	HonestReason     string    `json:"honest_reason,omitempty"`
	AssociatedPerson string    `json:"associated_person,omitempty"`
	Date             time.Time `json:"date"`
}

// IsEssential reports whether the expense is tagged essential.
func (e Expense) IsEssential() bool {
	return e.ExpenseType == TypeEssential
}
