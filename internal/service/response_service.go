package service

import (
	"fmt"
	"time"

	"expense_tracker/internal/models"
)

// ExpenseInput is the user-editable part of an expense.
type ExpenseInput struct {
	Amount           float64
	Category         string
	ExpenseType      string    // "essential" | "non-essential"; empty means non-essential
	Description      string
	HonestReason     string
	AssociatedPerson string
	Date             time.Time // zero means now on create, unchanged on update
}

// ExpenseQuery selects the expenses a report covers.
type ExpenseQuery struct {
	Period       string   // day | week | month | year | specific | all
	SpecificDate string   // YYYY-MM-DD, only used when Period == "specific"
	Categories   []string // optional allow-list, case-insensitive
}

// Report is everything the dashboard renders for one query.
type Report struct {
	Period     Period           `json:"period"`
	Summary    Summary          `json:"summary"`
	Expenses   []models.Expense `json:"expenses"`
	Categories []string         `json:"categories"` // every category the user has, for filter controls
	Selected   []string         `json:"selected_categories,omitempty"`
}

// ValidationError reports a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
