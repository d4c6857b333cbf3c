package service

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"expense_tracker/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCategory is used when an expense has no category.
const DefaultCategory = "Other"

// CategoryAmount is the sum for one (category, type) pair.
type CategoryAmount struct {
	Category    string  `json:"category"`
	ExpenseType string  `json:"expense_type"`
	Amount      float64 `json:"amount"`
}

// Summary aggregates a filtered expense set.
type Summary struct {
	Period              string           `json:"period"`
	Label               string           `json:"label"`
	Count               int              `json:"count"`
	Total               float64          `json:"total"`
	EssentialTotal      float64          `json:"essential_total"`
	NonEssentialTotal   float64          `json:"non_essential_total"`
	EssentialPercent    float64          `json:"essential_percent"`
	NonEssentialPercent float64          `json:"non_essential_percent"`
	Breakdown           []CategoryAmount `json:"breakdown,omitempty"`
	Analysis            string           `json:"analysis"`
}

// Empty reports whether no expense contributed to the summary.
func (s Summary) Empty() bool { return s.Count == 0 }

// ChartData is the grouped-bar layout of a breakdown: one label per category and
// one series per expense type.
type ChartData struct {
	Labels       []string  `json:"labels"`
	Essential    []float64 `json:"essential"`
	NonEssential []float64 `json:"non_essential"`
}

// Chart pivots the breakdown for a grouped-bar chart. It returns nil for an empty summary.
func (s Summary) Chart() *ChartData {
	if s.Empty() {
		return nil
	}
	index := make(map[string]int)
	chart := &ChartData{}
	for _, b := range s.Breakdown {
		i, ok := index[b.Category]
		if !ok {
			i = len(chart.Labels)
			index[b.Category] = i
			chart.Labels = append(chart.Labels, b.Category)
			chart.Essential = append(chart.Essential, 0)
			chart.NonEssential = append(chart.NonEssential, 0)
		}
		if b.ExpenseType == models.TypeEssential {
			chart.Essential[i] += b.Amount
		} else {
			chart.NonEssential[i] += b.Amount
		}
	}
	return chart
}

// Summarize computes totals, the essential split, per (category, type) sums and the
// narrative for expenses that are already filtered to p.
func Summarize(expenses []models.Expense, p Period) Summary {
	s := Summary{Period: p.Name, Label: p.Label, Count: len(expenses)}
	if len(expenses) == 0 {
		s.Analysis = fmt.Sprintf("No expenses recorded for %s.", p.Label)
		return s
	}

	type key struct{ category, typ string }
	sums := make(map[key]float64)

	for _, e := range expenses {
		typ := normalizeType(e.ExpenseType)
		s.Total += e.Amount
		if typ == models.TypeEssential {
			s.EssentialTotal += e.Amount
		} else {
			s.NonEssentialTotal += e.Amount
		}
		sums[key{category: NormalizeCategory(e.Category), typ: typ}] += e.Amount
	}

	if s.Total > 0 {
		s.EssentialPercent = clampPercent(s.EssentialTotal / s.Total * 100)
		s.NonEssentialPercent = 100 - s.EssentialPercent
	}

	s.Breakdown = make([]CategoryAmount, 0, len(sums))
	for k, v := range sums {
		s.Breakdown = append(s.Breakdown, CategoryAmount{Category: k.category, ExpenseType: k.typ, Amount: v})
	}
	sort.Slice(s.Breakdown, func(i, j int) bool {
		if s.Breakdown[i].Category != s.Breakdown[j].Category {
			return s.Breakdown[i].Category < s.Breakdown[j].Category
		}
		return s.Breakdown[i].ExpenseType < s.Breakdown[j].ExpenseType
	})

	s.Analysis = fmt.Sprintf(
		"You spent %s on essential expenses (%.2f%% of total). You spent %s on non-essential expenses (%.2f%% of total).",
		FormatMoney(s.EssentialTotal), s.EssentialPercent,
		FormatMoney(s.NonEssentialTotal), s.NonEssentialPercent,
	)
	return s
}

// FilterCategories keeps expenses whose title-cased category is in allow.
// An empty allow-list keeps everything.
func FilterCategories(expenses []models.Expense, allow []string) []models.Expense {
	wanted := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		if a = TitleCase(a); a != "" {
			wanted[a] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return expenses
	}
	out := make([]models.Expense, 0, len(expenses))
	for _, e := range expenses {
		if _, ok := wanted[TitleCase(e.Category)]; ok {
			out = append(out, e)
		}
	}
	return out
}

// TitleCase trims s and capitalizes the first letter of each word, lower-casing the rest.
func TitleCase(s string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// NormalizeCategory title-cases a category, substituting DefaultCategory when blank.
func NormalizeCategory(s string) string {
	if c := TitleCase(s); c != "" {
		return c
	}
	return DefaultCategory
}

// FormatMoney renders an amount as a dollar string with two decimals, e.g. "$12.50".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "$" + strconv.FormatFloat(v, 'f', 2, 64)
	}
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func normalizeType(t string) string {
	if strings.ToLower(strings.TrimSpace(t)) == models.TypeEssential {
		return models.TypeEssential
	}
	return models.TypeNonEssential
}

func clampPercent(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}
