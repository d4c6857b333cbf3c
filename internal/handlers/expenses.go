package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// suggestedCategories seed the category picker for users without history.
var suggestedCategories = []string{"Food", "Transport", "Entertainment", "Utilities", "Other"}

// expenseForm is the add/edit payload. Amount and Date stay strings so a bad value can be
// shown back to the user with a field error.
type expenseForm struct {
	Amount           string `json:"amount" form:"amount" binding:"required"`
	Category         string `json:"category" form:"category" binding:"max=100"`
	ExpenseType      string `json:"expense_type" form:"expense_type" binding:"omitempty,oneof=essential non-essential"`
	Description      string `json:"description" form:"description" binding:"max=256"`
	HonestReason     string `json:"honest_reason" form:"honest_reason" binding:"max=256"`
	AssociatedPerson string `json:"associated_person" form:"associated_person" binding:"max=256"`
	Date             string `json:"date" form:"date"`
}

// toInput converts the form, reporting field errors for values the binding cannot check.
func (f expenseForm) toInput(loc *time.Location) (service.ExpenseInput, map[string]string) {
	errs := map[string]string{}

	amount, err := service.ParseAmount(f.Amount, "")
	if err != nil {
		errs["amount"] = "Enter a number, e.g. 12.50."
	}

	var date time.Time
	if raw := strings.TrimSpace(f.Date); raw != "" {
		if date, err = parseFormDate(raw, loc); err != nil {
			errs["date"] = "Use YYYY-MM-DD HH:MM."
		}
	}

	if len(errs) > 0 {
		return service.ExpenseInput{}, errs
	}
	return service.ExpenseInput{
		Amount:           amount,
		Category:         f.Category,
		ExpenseType:      f.ExpenseType,
		Description:      f.Description,
		HonestReason:     f.HonestReason,
		AssociatedPerson: f.AssociatedPerson,
		Date:             date,
	}, nil
}

func formFromExpense(e models.Expense, loc *time.Location) expenseForm {
	return expenseForm{
		Amount:           strconv.FormatFloat(e.Amount, 'f', 2, 64),
		Category:         e.Category,
		ExpenseType:      e.ExpenseType,
		Description:      e.Description,
		HonestReason:     e.HonestReason,
		AssociatedPerson: e.AssociatedPerson,
		Date:             e.Date.In(loc).Format(formDateLayout),
	}
}

func parseFormDate(s string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range []string{formDateLayout, displayDateLayout, time.RFC3339, "2006-01-02"} {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

func parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) formCategories(c *gin.Context) []string {
	categories, err := h.services.Categories(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.log.Errorw("categories_lookup_failed", "user_id", currentUserID(c), "err", err)
		return suggestedCategories
	}
	if len(categories) == 0 {
		return suggestedCategories
	}
	return categories
}

func (h *Handler) renderExpenseForm(c *gin.Context, status int, form expenseForm, errs map[string]string, editID int) {
	data := gin.H{
		"title":      "Add Expense",
		"action":     "/add_expense",
		"submit":     "Add Expense",
		"form":       form,
		"errors":     errs,
		"categories": h.formCategories(c),
	}
	if editID > 0 {
		data["title"] = "Edit Expense"
		data["action"] = "/edit_expense/" + strconv.Itoa(editID)
		data["submit"] = "Save changes"
	}
	h.render(c, status, "expense_form.html", data)
}

// bindExpenseForm binds and converts the posted form, re-rendering it on failure.
func (h *Handler) bindExpenseForm(c *gin.Context, editID int) (expenseForm, service.ExpenseInput, bool) {
	var form expenseForm
	if err := c.ShouldBind(&form); err != nil {
		fields, ok := fieldErrors(err)
		if !ok {
			fields = map[string]string{"amount": "Could not read the form."}
		}
		h.renderExpenseForm(c, http.StatusBadRequest, form, fields, editID)
		return form, service.ExpenseInput{}, false
	}
	in, errs := form.toInput(h.opts.Location)
	if errs != nil {
		h.renderExpenseForm(c, http.StatusBadRequest, form, errs, editID)
		return form, service.ExpenseInput{}, false
	}
	return form, in, true
}

func (h *Handler) addExpensePage(c *gin.Context) {
	h.renderExpenseForm(c, http.StatusOK, expenseForm{ExpenseType: models.TypeNonEssential}, nil, 0)
}

func (h *Handler) addExpense(c *gin.Context) {
	form, in, ok := h.bindExpenseForm(c, 0)
	if !ok {
		return
	}

	id, err := h.services.Add(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		if fields, ok := fieldErrors(err); ok {
			h.renderExpenseForm(c, http.StatusBadRequest, form, fields, 0)
			return
		}
		h.expensePageError(c, "expense_add_failed", 0, err)
		return
	}

	h.log.Infow("expense_added", "user_id", currentUserID(c), "expense_id", id)
	h.redirectWithFlash(c, "/dashboard", flashSuccess, "Expense added successfully!")
}

func (h *Handler) editExpensePage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Expense not found.")
		return
	}
	e, err := h.services.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.expensePageError(c, "expense_load_failed", id, err)
		return
	}
	h.renderExpenseForm(c, http.StatusOK, formFromExpense(e, h.opts.Location), nil, id)
}

func (h *Handler) editExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Expense not found.")
		return
	}
	form, in, ok := h.bindExpenseForm(c, id)
	if !ok {
		return
	}

	if err := h.services.Update(c.Request.Context(), currentUserID(c), id, in); err != nil {
		if fields, ok := fieldErrors(err); ok {
			h.renderExpenseForm(c, http.StatusBadRequest, form, fields, id)
			return
		}
		h.expensePageError(c, "expense_update_failed", id, err)
		return
	}

	h.redirectWithFlash(c, "/dashboard", flashSuccess, "Expense updated successfully!")
}

func (h *Handler) deleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Expense not found.")
		return
	}
	if err := h.services.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.expensePageError(c, "expense_delete_failed", id, err)
		return
	}
	h.redirectWithFlash(c, "/dashboard", flashSuccess, "Expense deleted.")
}

// expensePageError maps service errors to a flash on the dashboard.
func (h *Handler) expensePageError(c *gin.Context, logKey string, id int, err error) {
	switch {
	case errors.Is(err, service.ErrNotOwner):
		h.log.Warnw(logKey, "user_id", currentUserID(c), "expense_id", id, "err", err)
		h.redirectWithFlash(c, "/dashboard", flashDanger, "You do not have permission to modify this expense.")
	case errors.Is(err, service.ErrExpenseNotFound):
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Expense not found.")
	default:
		h.log.Errorw(logKey, "user_id", currentUserID(c), "expense_id", id, "err", err)
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Something went wrong. Please try again.")
	}
}
