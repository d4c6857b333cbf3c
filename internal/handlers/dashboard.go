package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

var periodChoices = []string{
	service.PeriodDay, service.PeriodWeek, service.PeriodMonth,
	service.PeriodYear, service.PeriodSpecific, service.PeriodAll,
}

// parseExpenseQuery reads period, specific_date and categories. Categories may repeat
// or be comma separated.
func parseExpenseQuery(c *gin.Context) service.ExpenseQuery {
	q := service.ExpenseQuery{
		Period:       c.DefaultQuery("period", service.DefaultPeriod),
		SpecificDate: c.Query("specific_date"),
	}
	for _, raw := range c.QueryArray("categories") {
		for _, cat := range strings.Split(raw, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				q.Categories = append(q.Categories, cat)
			}
		}
	}
	return q
}

// encodeQuery turns a query back into URL parameters, for the download link.
func encodeQuery(p service.Period, q service.ExpenseQuery) url.Values {
	v := url.Values{}
	v.Set("period", p.Name)
	if p.Name == service.PeriodSpecific && p.Date != "" {
		v.Set("specific_date", p.Date)
	}
	for _, cat := range q.Categories {
		v.Add("categories", cat)
	}
	return v
}

func (h *Handler) dashboard(c *gin.Context) {
	q := parseExpenseQuery(c)
	report, err := h.services.Dashboard(c.Request.Context(), currentUserID(c), q)
	if err != nil {
		h.log.Errorw("dashboard_failed", "user_id", currentUserID(c), "err", err)
		c.String(http.StatusInternalServerError, "Could not load your expenses. Please try again.")
		return
	}

	h.render(c, http.StatusOK, "dashboard.html", gin.H{
		"title":   "Dashboard",
		"report":  report,
		"chart":   report.Summary.Chart(),
		"periods": periodChoices,
		"query":   template.URL(encodeQuery(report.Period, q).Encode()),
	})
}

func (h *Handler) downloadExpenses(c *gin.Context) {
	var buf bytes.Buffer
	filename, err := h.services.Export(c.Request.Context(), currentUserID(c), parseExpenseQuery(c), &buf)
	if err != nil {
		h.log.Errorw("export_failed", "user_id", currentUserID(c), "err", err)
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Could not export your expenses. Please try again.")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) uploadExpenses(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.redirectWithFlash(c, "/dashboard", flashDanger, "No file selected.")
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.services.Import(c.Request.Context(), currentUserID(c), header.Filename, file)
	switch {
	case errors.Is(err, service.ErrNotCSV):
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Please upload a CSV file.")
		return
	case errors.Is(err, service.ErrMalformedCSV):
		h.log.Infow("import_malformed", "user_id", currentUserID(c), "file", header.Filename, "err", err)
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Could not read the CSV file. Nothing was imported.")
		return
	case err != nil:
		h.log.Errorw("import_failed", "user_id", currentUserID(c), "file", header.Filename, "err", err)
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Import failed. Nothing was imported.")
		return
	}

	h.log.Infow("import_done", "user_id", currentUserID(c), "imported", res.Imported, "errors", res.TotalErrors)
	kind, messages := importMessages(res)
	h.redirectWithFlash(c, "/dashboard", kind, messages...)
}

// importMessages words an import result for the flash banner.
func importMessages(res service.ImportResult) (string, []string) {
	if res.TotalErrors == 0 {
		return flashSuccess, []string{fmt.Sprintf("Imported %d expenses.", res.Imported)}
	}

	kind := flashWarning
	if res.Imported == 0 {
		kind = flashDanger
	}
	messages := []string{fmt.Sprintf("Imported %d expenses; %d rows were skipped.", res.Imported, res.TotalErrors)}
	for _, re := range res.Errors {
		messages = append(messages, re.String())
	}
	if hidden := res.HiddenErrors(); hidden > 0 {
		messages = append(messages, fmt.Sprintf("...and %d more errors.", hidden))
	}
	return kind, messages
}

func (h *Handler) normalizeCategories(c *gin.Context) {
	n, err := h.services.NormalizeCategories(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.log.Errorw("normalize_categories_failed", "user_id", currentUserID(c), "err", err)
		h.redirectWithFlash(c, "/dashboard", flashDanger, "Could not tidy categories. Please try again.")
		return
	}
	h.redirectWithFlash(c, "/dashboard", flashSuccess, fmt.Sprintf("Updated %d expense categories.", n))
}
