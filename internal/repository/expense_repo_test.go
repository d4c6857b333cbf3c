package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"expense_tracker/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockExpenseRepo(t *testing.T) (*ExpenseSQLite, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unmet sqlmock expectations")
		_ = db.Close()
	})
	return NewExpenseSQLite(db), mock
}

var expenseRowColumns = []string{
	"id", "user_id", "amount", "category", "expense_type",
	"description", "honest_reason", "associated_person", "date",
}

func sampleExpense() models.Expense {
	return models.Expense{
		UserID:           7,
		Amount:           12.5,
		Category:         "Food",
		ExpenseType:      models.TypeEssential,
		Description:      "Lunch",
		HonestReason:     "hungry",
		AssociatedPerson: "Sam",
		Date:             time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
	}
}

func TestExpenseSQLite_Create(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)
	e := sampleExpense()

	mock.ExpectExec(regexp.QuoteMeta(insertExpenseSQL)).
		WithArgs(7, 12.5, "Food", "essential", "Lunch", "hungry", "Sam", "2024-03-15 12:30:00").
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, 11, id)
}

func TestExpenseSQLite_Create_StoresUTC(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)
	e := sampleExpense()
	e.Date = time.Date(2024, 3, 15, 14, 30, 0, 0, time.FixedZone("CET", 2*3600))

	mock.ExpectExec(regexp.QuoteMeta(insertExpenseSQL)).
		WithArgs(7, 12.5, "Food", "essential", "Lunch", "hungry", "Sam", "2024-03-15 12:30:00").
		WillReturnResult(sqlmock.NewResult(1, 1))

	_, err := repo.Create(context.Background(), e)
	require.NoError(t, err)
}

func TestExpenseSQLite_Create_ExecError(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertExpenseSQL)).
		WillReturnError(errors.New("disk full"))

	_, err := repo.Create(context.Background(), sampleExpense())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert expense for user 7")
}

func TestExpenseSQLite_CreateBatch_CommitsOnce(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)
	a, b := sampleExpense(), sampleExpense()
	b.Amount = 3

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertExpenseSQL))
	prep.ExpectExec().WithArgs(7, 12.5, "Food", "essential", "Lunch", "hungry", "Sam", "2024-03-15 12:30:00").
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WithArgs(7, 3.0, "Food", "essential", "Lunch", "hungry", "Sam", "2024-03-15 12:30:00").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateBatch(context.Background(), []models.Expense{a, b}))
}

func TestExpenseSQLite_CreateBatch_RollsBackOnError(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(regexp.QuoteMeta(insertExpenseSQL))
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []models.Expense{sampleExpense(), sampleExpense()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert expense 2 of 2")
}

func TestExpenseSQLite_CreateBatch_Empty(t *testing.T) {
	repo, _ := newMockExpenseRepo(t)
	assert.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestExpenseSQLite_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newMockExpenseRepo(t)
		rows := sqlmock.NewRows(expenseRowColumns).
			AddRow(5, 7, 9.99, "Transport", "non-essential", "", "", "", "2024-03-01 08:00:00")
		mock.ExpectQuery(regexp.QuoteMeta(selectExpenseByIDSQL)).WithArgs(5).WillReturnRows(rows)

		e, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		require.NotNil(t, e)
		assert.Equal(t, 7, e.UserID)
		assert.Equal(t, "Transport", e.Category)
		assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC), e.Date)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockExpenseRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta(selectExpenseByIDSQL)).WithArgs(5).
			WillReturnRows(sqlmock.NewRows(expenseRowColumns))

		e, err := repo.GetByID(context.Background(), 5)
		require.NoError(t, err)
		assert.Nil(t, e)
	})

	t.Run("bad stored date", func(t *testing.T) {
		repo, mock := newMockExpenseRepo(t)
		rows := sqlmock.NewRows(expenseRowColumns).
			AddRow(5, 7, 1.0, "Food", "essential", "", "", "", "yesterday")
		mock.ExpectQuery(regexp.QuoteMeta(selectExpenseByIDSQL)).WithArgs(5).WillReturnRows(rows)

		_, err := repo.GetByID(context.Background(), 5)
		require.Error(t, err)
	})
}

func TestExpenseSQLite_UpdateAndDelete_ScopedToOwner(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)
	e := sampleExpense()
	e.ID = 4

	mock.ExpectExec(regexp.QuoteMeta(updateExpenseSQL)).
		WithArgs(12.5, "Food", "essential", "Lunch", "hungry", "Sam", "2024-03-15 12:30:00", 4, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteExpenseSQL)).
		WithArgs(4, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Update(context.Background(), e))
	assert.ErrorIs(t, repo.Delete(context.Background(), 4, 8), ErrNotFound)
}

func TestExpenseSQLite_List_BuildsRangeQuery(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to time.Time
		pattern  string
		args     []any
	}{
		{
			name:    "bounded",
			from:    from,
			to:      to,
			pattern: `WHERE user_id = \? AND date >= \? AND date < \? ORDER BY date DESC`,
			args:    []any{7, "2024-03-01 00:00:00", "2024-04-01 00:00:00"},
		},
		{
			name:    "open start",
			to:      to,
			pattern: `WHERE user_id = \? AND date < \? ORDER BY date DESC`,
			args:    []any{7, "2024-04-01 00:00:00"},
		},
		{
			name:    "unbounded",
			pattern: `WHERE user_id = \? ORDER BY date DESC`,
			args:    []any{7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockExpenseRepo(t)

			args := make([]driver.Value, 0, len(tt.args))
			for _, a := range tt.args {
				args = append(args, a)
			}
			rows := sqlmock.NewRows(expenseRowColumns).
				AddRow(2, 7, 5.0, "Food", "essential", "", "", "", "2024-03-20 10:00:00").
				AddRow(1, 7, 2.5, "Fun", "non-essential", "", "", "", "2024-03-02 09:15:00")
			mock.ExpectQuery(tt.pattern).WithArgs(args...).WillReturnRows(rows)

			got, err := repo.List(context.Background(), 7, tt.from, tt.to)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, 2, got[0].ID)
			assert.Equal(t, "Fun", got[1].Category)
		})
	}
}

func TestExpenseSQLite_RenameCategories(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE expenses SET category = ? WHERE category = ? AND user_id = ?`)).
		WithArgs("Eating Out", "eating out", 7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	n, err := repo.RenameCategories(context.Background(), 7, map[string]string{"eating out": "Eating Out"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestExpenseSQLite_DistinctCategories_AllUsers(t *testing.T) {
	repo, mock := newMockExpenseRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT category FROM expenses ORDER BY category`)).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("Food").AddRow("food"))

	got, err := repo.DistinctCategories(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Food", "food"}, got)
}
