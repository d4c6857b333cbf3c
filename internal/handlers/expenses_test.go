package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getPage(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(sessionCookieFor("tok"))
	r.ServeHTTP(w, req)
	return w
}

func TestAddExpense_Success(t *testing.T) {
	s, _, exp, _, _ := newMockService()
	exp.addID = 10
	r := newTestRouter(s)

	w := postForm(r, "/add_expense", url.Values{
		"amount":       {"$12.50"},
		"category":     {"food"},
		"expense_type": {"essential"},
		"description":  {"lunch"},
		"date":         {"2024-03-14T13:05"},
	}, sessionCookieFor("tok"))

	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.NotNil(t, findCookie(w, flashCookie))
	assert.Equal(t, 1, exp.lastUserID)
	assert.Equal(t, 12.5, exp.lastInput.Amount)
	assert.Equal(t, "food", exp.lastInput.Category)
	assert.Equal(t, time.Date(2024, 3, 14, 13, 5, 0, 0, time.UTC), exp.lastInput.Date)
}

func TestAddExpense_FieldErrors(t *testing.T) {
	s, _, exp, _, _ := newMockService()
	r := newTestRouter(s)

	w := postForm(r, "/add_expense", url.Values{"amount": {"abc"}, "date": {"yesterday"}}, sessionCookieFor("tok"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Enter a number")
	assert.Contains(t, w.Body.String(), "Use YYYY-MM-DD HH:MM.")

	w = postForm(r, "/add_expense", url.Values{"amount": {"1"}, "expense_type": {"luxury"}}, sessionCookieFor("tok"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Must be one of: essential, non-essential.")

	w = postForm(r, "/add_expense", url.Values{}, sessionCookieFor("tok"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "This field is required.")

	assert.Zero(t, exp.addCalls)
}

func TestAddExpense_RequiresSession(t *testing.T) {
	s, _, exp, _, _ := newMockService()
	r := newTestRouter(s)

	w := postForm(r, "/add_expense", url.Values{"amount": {"1"}})
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.Zero(t, exp.addCalls)
}

func TestAddExpensePage_Renders(t *testing.T) {
	s, _, _, rep, _ := newMockService()
	r := newTestRouter(s)

	w := getPage(r, "/add_expense")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/add_expense"`)
	assert.Contains(t, w.Body.String(), `<option value="Games">`)
	assert.Contains(t, w.Body.String(), "tester")
	assert.Zero(t, rep.dashboardCalls, "the category picker must not aggregate expenses")
}

func TestAddExpensePage_SuggestsCategoriesWithoutHistory(t *testing.T) {
	s, _, _, rep, _ := newMockService()
	rep.report.Categories = nil
	r := newTestRouter(s)

	w := getPage(r, "/add_expense")
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range suggestedCategories {
		assert.Contains(t, w.Body.String(), `<option value="`+c+`">`)
	}
}

func TestEditExpensePage(t *testing.T) {
	s, _, exp, _, _ := newMockService()
	exp.getResp = models.Expense{
		ID: 3, UserID: 1, Amount: 9.99, Category: "Books", ExpenseType: models.TypeEssential,
		Date: time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
	}
	r := newTestRouter(s)

	w := getPage(r, "/edit_expense/3")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `action="/edit_expense/3"`)
	assert.Contains(t, body, `value="9.99"`)
	assert.Contains(t, body, `value="2024-03-01T08:30"`)
	assert.Equal(t, 3, exp.lastID)
}

func TestEditExpense_Update(t *testing.T) {
	s, _, exp, _, _ := newMockService()
	r := newTestRouter(s)

	w := postForm(r, "/edit_expense/3", url.Values{"amount": {"20"}, "category": {"rent"}}, sessionCookieFor("tok"))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 3, exp.lastID)
	assert.Equal(t, 20.0, exp.lastInput.Amount)
	assert.True(t, exp.lastInput.Date.IsZero())
}

func TestExpensePages_OwnershipErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not owner", service.ErrNotOwner},
		{"not found", service.ErrExpenseNotFound},
		{"db error", errors.New("disk I/O error")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, exp, _, _ := newMockService()
			exp.getErr = tc.err
			exp.updateErr = tc.err
			exp.deleteErr = tc.err
			r := newTestRouter(s)

			for _, w := range []*httptest.ResponseRecorder{
				getPage(r, "/edit_expense/5"),
				postForm(r, "/edit_expense/5", url.Values{"amount": {"1"}}, sessionCookieFor("tok")),
				getPage(r, "/delete_expense/5"),
			} {
				assert.Equal(t, http.StatusSeeOther, w.Code)
				assert.Equal(t, "/dashboard", w.Header().Get("Location"))
				assert.NotNil(t, findCookie(w, flashCookie))
			}
		})
	}
}

func TestDeleteExpense(t *testing.T) {
	s, _, exp, _, _ := newMockService()
	r := newTestRouter(s)

	w := getPage(r, "/delete_expense/8")
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, 8, exp.lastID)
	assert.Equal(t, 1, exp.lastUserID)

	w = getPage(r, "/delete_expense/abc")
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestParseFormDate(t *testing.T) {
	for _, raw := range []string{"2024-03-14T13:05", "2024-03-14 13:05", "2024-03-14T13:05:00Z"} {
		got, err := parseFormDate(raw, time.UTC)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(time.Date(2024, 3, 14, 13, 5, 0, 0, time.UTC)), raw)
	}
	_, err := parseFormDate("14/03/2024", time.UTC)
	assert.Error(t, err)
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "honest_reason", snakeCase("HonestReason"))
	assert.Equal(t, "amount", snakeCase("Amount"))
	assert.Equal(t, "associated_person", snakeCase("AssociatedPerson"))
}
