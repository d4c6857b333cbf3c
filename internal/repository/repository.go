package repository

import (
	"context"
	"database/sql"
	"time"

	"expense_tracker/internal/models"
)

type Authorization interface {
	Create(username, email, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id int) (*models.User, error)
	UpdatePassword(id int, hash string) error
}

// ExpenseRepo stores expenses. Every read and write is scoped by user id except GetByID,
// which returns the owner so callers can enforce ownership.
type ExpenseRepo interface {
	Create(ctx context.Context, e models.Expense) (int, error)
	CreateBatch(ctx context.Context, expenses []models.Expense) error
	GetByID(ctx context.Context, id int) (*models.Expense, error)
	Update(ctx context.Context, e models.Expense) error
	Delete(ctx context.Context, id, userID int) error
	List(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error)
	DistinctCategories(ctx context.Context, userID int) ([]string, error)
	RenameCategories(ctx context.Context, userID int, renames map[string]string) (int, error)
}

type Repository struct {
	ExpenseRepo ExpenseRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ExpenseRepo: NewExpenseSQLite(db),
		Auth:        NewUserRepository(db),
	}
}
