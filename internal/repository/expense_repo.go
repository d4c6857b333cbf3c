package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense_tracker/internal/models"
)

// ErrNotFound is returned by mutations that matched no row.
var ErrNotFound = errors.New("record not found")

// dbTimeLayout is how expense dates are stored: UTC, second precision, sortable as text.
const dbTimeLayout = "2006-01-02 15:04:05"

const (
	expenseColumns = `id, user_id, amount, category, expense_type, description, honest_reason, associated_person, date`

	insertExpenseSQL = `
		INSERT INTO expenses (user_id, amount, category, expense_type, description, honest_reason, associated_person, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	selectExpenseByIDSQL = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`
	updateExpenseSQL     = `
		UPDATE expenses
		SET amount = ?, category = ?, expense_type = ?, description = ?, honest_reason = ?, associated_person = ?, date = ?
		WHERE id = ? AND user_id = ?
	`
	deleteExpenseSQL = `DELETE FROM expenses WHERE id = ? AND user_id = ?`
)

type ExpenseSQLite struct {
	db *sql.DB
}

func NewExpenseSQLite(db *sql.DB) *ExpenseSQLite { return &ExpenseSQLite{db: db} }

var _ ExpenseRepo = (*ExpenseSQLite)(nil)

func formatDBTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(dbTimeLayout)
}

func parseDBTime(s string) (time.Time, error) {
	return time.ParseInLocation(dbTimeLayout, s, time.UTC)
}

func expenseArgs(e models.Expense) []any {
	return []any{
		e.Amount,
		e.Category,
		e.ExpenseType,
		e.Description,
		e.HonestReason,
		e.AssociatedPerson,
		formatDBTime(e.Date),
	}
}

// Create inserts an expense and returns its id. A zero Date is stored as now.
func (r *ExpenseSQLite) Create(ctx context.Context, e models.Expense) (int, error) {
	args := append([]any{e.UserID}, expenseArgs(e)...)
	res, err := r.db.ExecContext(ctx, insertExpenseSQL, args...)
	if err != nil {
		return 0, fmt.Errorf("insert expense for user %d: %w", e.UserID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for expense: %w", err)
	}
	return int(id), nil
}

// CreateBatch inserts all expenses in a single transaction; any failure rolls back the batch.
func (r *ExpenseSQLite) CreateBatch(ctx context.Context, expenses []models.Expense) error {
	if len(expenses) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertExpenseSQL)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range expenses {
		args := append([]any{e.UserID}, expenseArgs(e)...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert expense %d of %d: %w", i+1, len(expenses), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}
	return nil
}

// GetByID returns the expense with the given id regardless of owner. Returns (nil, nil) if not found.
func (r *ExpenseSQLite) GetByID(ctx context.Context, id int) (*models.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, selectExpenseByIDSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select expense %d: %w", id, err)
	}
	return &e, nil
}

// Update replaces every field of an expense owned by e.UserID.
func (r *ExpenseSQLite) Update(ctx context.Context, e models.Expense) error {
	args := append(expenseArgs(e), e.ID, e.UserID)
	res, err := r.db.ExecContext(ctx, updateExpenseSQL, args...)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return requireAffected(res, e.ID)
}

// Delete removes an expense owned by userID.
func (r *ExpenseSQLite) Delete(ctx context.Context, id, userID int) error {
	res, err := r.db.ExecContext(ctx, deleteExpenseSQL, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// List returns the user's expenses in [from, to), newest first. Zero bounds are open.
func (r *ExpenseSQLite) List(ctx context.Context, userID int, from, to time.Time) ([]models.Expense, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if !from.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, formatDBTime(from))
	}
	if !to.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, formatDBTime(to))
	}

	q := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]models.Expense, 0, 64)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

// DistinctCategories lists stored category spellings, sorted. userID 0 means all users.
func (r *ExpenseSQLite) DistinctCategories(ctx context.Context, userID int) ([]string, error) {
	q := `SELECT DISTINCT category FROM expenses`
	var args []any
	if userID != 0 {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY category`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// RenameCategories rewrites category spellings (old -> new) in one transaction and
// returns the number of rows changed. userID 0 means all users.
func (r *ExpenseSQLite) RenameCategories(ctx context.Context, userID int, renames map[string]string) (int, error) {
	if len(renames) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin category rename: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := `UPDATE expenses SET category = ? WHERE category = ?`
	if userID != 0 {
		q += ` AND user_id = ?`
	}

	total := 0
	for from, to := range renames {
		args := []any{to, from}
		if userID != 0 {
			args = append(args, userID)
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return 0, fmt.Errorf("rename category %q: %w", from, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for category %q: %w", from, err)
		}
		total += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit category rename: %w", err)
	}
	return total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (models.Expense, error) {
	var (
		e       models.Expense
		dateStr string
	)
	if err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.Amount,
		&e.Category,
		&e.ExpenseType,
		&e.Description,
		&e.HonestReason,
		&e.AssociatedPerson,
		&dateStr,
	); err != nil {
		return models.Expense{}, err
	}
	date, err := parseDBTime(dateStr)
	if err != nil {
		return models.Expense{}, fmt.Errorf("parse date %q: %w", dateStr, err)
	}
	e.Date = date
	return e, nil
}

func requireAffected(res sql.Result, id int) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for expense %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
