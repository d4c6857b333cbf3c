package service

import (
	"context"
	"io"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

type Authorization interface {
	SignUp(username, email, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
	GetUser(id int) (*models.User, error)
	SetPassword(username, password string) error
}

// Expenses exposes owner-scoped CRUD over single expenses.
type Expenses interface {
	Add(ctx context.Context, userID int, in ExpenseInput) (int, error)
	Get(ctx context.Context, userID, id int) (models.Expense, error)
	Update(ctx context.Context, userID, id int, in ExpenseInput) error
	Delete(ctx context.Context, userID, id int) error
}

// Reports exposes period-filtered views: dashboard aggregation and CSV export/import.
type Reports interface {
	Dashboard(ctx context.Context, userID int, q ExpenseQuery) (Report, error)
	Categories(ctx context.Context, userID int) ([]string, error)
	Export(ctx context.Context, userID int, q ExpenseQuery, w io.Writer) (string, error)
	Import(ctx context.Context, userID int, filename string, r io.Reader) (ImportResult, error)
}

// Maintenance holds explicit write-side housekeeping that reads never trigger.
type Maintenance interface {
	NormalizeCategories(ctx context.Context, userID int) (int, error)
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	Expenses
	Reports
	Maintenance
}

// Options carries the runtime settings services need.
type Options struct {
	SigningKey   string
	TokenTTL     time.Duration
	Location     *time.Location
	CurrencyCode string
	Now          func() time.Time
}

// NewService wires repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	expenses := NewExpenseService(repos.ExpenseRepo, opts)
	return &Service{
		Authorization: NewAuthService(repos.Auth, opts.SigningKey, opts.TokenTTL),
		Expenses:      expenses,
		Reports:       expenses,
		Maintenance:   expenses,
	}
}
