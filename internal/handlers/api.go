package handlers

import (
	"errors"
	"net/http"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// summaryResponse is the body of GET /api/v1/summary.
type summaryResponse struct {
	Period  service.Period     `json:"period"`
	Summary service.Summary    `json:"summary"`
	Chart   *service.ChartData `json:"chart"`
}

// logAndJSONError logs err under logKey and writes a JSON error body.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err, "user_id", currentUserID(c)}, kv...)
		if httpCode >= http.StatusInternalServerError {
			h.log.Errorw(logKey, fields...)
		} else {
			h.log.Infow(logKey, fields...)
		}
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// expenseAPIError maps service errors to status codes.
func (h *Handler) expenseAPIError(c *gin.Context, logKey string, err error) {
	if fields, ok := fieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": fields})
		return
	}
	switch {
	case errors.Is(err, service.ErrNotOwner):
		h.logAndJSONError(c, http.StatusForbidden, "forbidden", logKey, err)
	case errors.Is(err, service.ErrExpenseNotFound):
		h.logAndJSONError(c, http.StatusNotFound, "expense not found", logKey, err)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, "internal error", logKey, err)
	}
}

// @Summary      Spending summary
// @Description  Totals, essential split, per-category breakdown and narrative for a period.
// @Tags         reports
// @Produce      json
// @Param        period         query  string  false  "Period"  Enums(day,week,month,year,specific,all)
// @Param        specific_date  query  string  false  "Day for period=specific"  example(2024-03-15)
// @Param        categories     query  []string  false  "Category allow-list"  collectionFormat(multi)
// @Success      200  {object}  summaryResponse
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/summary [get]
// @Security     BearerAuth
func (h *Handler) apiSummary(c *gin.Context) {
	report, err := h.services.Dashboard(c.Request.Context(), currentUserID(c), parseExpenseQuery(c))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to build summary", "api_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, summaryResponse{
		Period:  report.Period,
		Summary: report.Summary,
		Chart:   report.Summary.Chart(),
	})
}

// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Param        period         query  string  false  "Period"  Enums(day,week,month,year,specific,all)
// @Param        specific_date  query  string  false  "Day for period=specific"  example(2024-03-15)
// @Param        categories     query  []string  false  "Category allow-list"  collectionFormat(multi)
// @Success      200  {object}  map[string]interface{}  "period, count, expenses"
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/expenses [get]
// @Security     BearerAuth
func (h *Handler) apiListExpenses(c *gin.Context) {
	report, err := h.services.Dashboard(c.Request.Context(), currentUserID(c), parseExpenseQuery(c))
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load expenses", "api_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"period":   report.Period,
		"count":    len(report.Expenses),
		"expenses": report.Expenses,
	})
}

// @Summary      Create an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        input  body      expenseForm  true  "expense; amount and date are strings"
// @Success      201    {object}  map[string]int
// @Failure      400    {object}  map[string]interface{}
// @Failure      401    {object}  map[string]string
// @Router       /api/v1/expenses [post]
// @Security     BearerAuth
func (h *Handler) apiCreateExpense(c *gin.Context) {
	in, ok := h.bindExpenseJSON(c)
	if !ok {
		return
	}
	id, err := h.services.Add(c.Request.Context(), currentUserID(c), in)
	if err != nil {
		h.expenseAPIError(c, "api_create_failed", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Param        id   path      int  true  "Expense id"
// @Success      200  {object}  models.Expense
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/expenses/{id} [get]
// @Security     BearerAuth
func (h *Handler) apiGetExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	e, err := h.services.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		h.expenseAPIError(c, "api_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// @Summary      Replace an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Param        id     path  int          true  "Expense id"
// @Param        input  body  expenseForm  true  "all fields; an empty date keeps the stored one"
// @Success      204
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/expenses/{id} [put]
// @Security     BearerAuth
func (h *Handler) apiUpdateExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	in, ok := h.bindExpenseJSON(c)
	if !ok {
		return
	}
	if err := h.services.Update(c.Request.Context(), currentUserID(c), id, in); err != nil {
		h.expenseAPIError(c, "api_update_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary      Delete an expense
// @Tags         expenses
// @Param        id   path  int  true  "Expense id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/expenses/{id} [delete]
// @Security     BearerAuth
func (h *Handler) apiDeleteExpense(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.services.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		h.expenseAPIError(c, "api_delete_failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) bindExpenseJSON(c *gin.Context) (service.ExpenseInput, bool) {
	var form expenseForm
	if ok := h.bindJSONOrBadRequest(c, &form); !ok {
		return service.ExpenseInput{}, false
	}
	in, errs := form.toInput(h.opts.Location)
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": errs})
		return service.ExpenseInput{}, false
	}
	return in, true
}
