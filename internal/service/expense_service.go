package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

// Ownership and lookup errors.
var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrNotOwner        = errors.New("expense belongs to another user")
	ErrNotCSV          = errors.New("only .csv files can be imported")
)

const maxTextFieldLen = 256

type ExpenseService struct {
	repo         repository.ExpenseRepo
	loc          *time.Location
	currencyCode string
	now          func() time.Time
}

func NewExpenseService(repo repository.ExpenseRepo, opts Options) *ExpenseService {
	s := &ExpenseService{
		repo:         repo,
		loc:          opts.Location,
		currencyCode: opts.CurrencyCode,
		now:          opts.Now,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *ExpenseService) clock() time.Time {
	return s.now().In(s.loc)
}

// Add validates and stores a new expense for userID.
func (s *ExpenseService) Add(ctx context.Context, userID int, in ExpenseInput) (int, error) {
	e, err := s.fromInput(in)
	if err != nil {
		return 0, err
	}
	if e.Date.IsZero() {
		e.Date = s.clock()
	}
	e.UserID = userID
	return s.repo.Create(ctx, e)
}

// Get returns an expense only if userID owns it.
func (s *ExpenseService) Get(ctx context.Context, userID, id int) (models.Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.Expense{}, err
	}
	if e == nil {
		return models.Expense{}, ErrExpenseNotFound
	}
	if e.UserID != userID {
		return models.Expense{}, ErrNotOwner
	}
	e.Date = e.Date.In(s.loc)
	return *e, nil
}

// Update replaces every field of an owned expense. A zero input date keeps the stored date.
func (s *ExpenseService) Update(ctx context.Context, userID, id int, in ExpenseInput) error {
	current, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	e, err := s.fromInput(in)
	if err != nil {
		return err
	}
	if e.Date.IsZero() {
		e.Date = current.Date
	}
	e.ID = id
	e.UserID = userID
	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	return nil
}

// Delete removes an owned expense.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	return nil
}

// Dashboard resolves the period, filters by category and aggregates.
func (s *ExpenseService) Dashboard(ctx context.Context, userID int, q ExpenseQuery) (Report, error) {
	period, expenses, err := s.query(ctx, userID, q)
	if err != nil {
		return Report{}, err
	}
	categories, err := s.Categories(ctx, userID)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Period:     period,
		Summary:    Summarize(expenses, period),
		Expenses:   expenses,
		Categories: categories,
		Selected:   q.Categories,
	}, nil
}

// Export writes the queried expenses as CSV to w and returns the attachment filename.
func (s *ExpenseService) Export(ctx context.Context, userID int, q ExpenseQuery, w io.Writer) (string, error) {
	period, expenses, err := s.query(ctx, userID, q)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(w, expenses, s.loc); err != nil {
		return "", err
	}
	return fmt.Sprintf("expenses_%s_%s.csv", period.Slug(), s.clock().Format(specificDateLayout)), nil
}

// ImportResult summarizes a CSV upload.
type ImportResult struct {
	Imported    int        `json:"imported"`
	Errors      []RowError `json:"errors,omitempty"` // at most MaxReportedRowErrors
	TotalErrors int        `json:"total_errors"`
}

// HiddenErrors is the number of row errors not listed in Errors.
func (r ImportResult) HiddenErrors() int {
	return r.TotalErrors - len(r.Errors)
}

// Import parses an uploaded CSV and stores every valid row in one transaction.
func (s *ExpenseService) Import(ctx context.Context, userID int, filename string, r io.Reader) (ImportResult, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".csv") {
		return ImportResult{}, ErrNotCSV
	}

	parsed, err := ParseCSV(r, ImportOptions{
		Location:     s.loc,
		Now:          s.clock(),
		CurrencyCode: s.currencyCode,
	})
	if err != nil {
		return ImportResult{}, err
	}

	if len(parsed.Expenses) > 0 {
		for i := range parsed.Expenses {
			parsed.Expenses[i].UserID = userID
		}
		if err := s.repo.CreateBatch(ctx, parsed.Expenses); err != nil {
			return ImportResult{}, fmt.Errorf("store imported expenses: %w", err)
		}
	}

	res := ImportResult{Imported: len(parsed.Expenses), TotalErrors: len(parsed.Errors)}
	res.Errors = parsed.Errors
	if len(res.Errors) > MaxReportedRowErrors {
		res.Errors = res.Errors[:MaxReportedRowErrors]
	}
	return res, nil
}

// NormalizeCategories title-cases stored categories for userID (0 means every user).
func (s *ExpenseService) NormalizeCategories(ctx context.Context, userID int) (int, error) {
	stored, err := s.repo.DistinctCategories(ctx, userID)
	if err != nil {
		return 0, err
	}
	renames := make(map[string]string)
	for _, c := range stored {
		if n := NormalizeCategory(c); n != c {
			renames[c] = n
		}
	}
	return s.repo.RenameCategories(ctx, userID, renames)
}

func (s *ExpenseService) query(ctx context.Context, userID int, q ExpenseQuery) (Period, []models.Expense, error) {
	period := ResolvePeriod(q.Period, q.SpecificDate, s.clock())
	expenses, err := s.repo.List(ctx, userID, period.Start, period.End)
	if err != nil {
		return Period{}, nil, err
	}
	for i := range expenses {
		expenses[i].Date = expenses[i].Date.In(s.loc)
	}
	return period, FilterCategories(expenses, q.Categories), nil
}

// Categories returns the sorted, distinct title-cased categories the user has recorded.
func (s *ExpenseService) Categories(ctx context.Context, userID int) ([]string, error) {
	stored, err := s.repo.DistinctCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(stored))
	out := make([]string, 0, len(stored))
	for _, c := range stored {
		n := NormalizeCategory(c)
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func (s *ExpenseService) fromInput(in ExpenseInput) (models.Expense, error) {
	if math.IsNaN(in.Amount) || math.Abs(in.Amount) > MaxAmount.InexactFloat64() {
		return models.Expense{}, &ValidationError{Field: "amount", Message: "amount is out of range"}
	}

	typ := strings.ToLower(strings.TrimSpace(in.ExpenseType))
	switch typ {
	case "":
		typ = models.TypeNonEssential
	case models.TypeEssential, models.TypeNonEssential:
	default:
		return models.Expense{}, &ValidationError{Field: "expense_type", Message: fmt.Sprintf("unknown expense type %q", in.ExpenseType)}
	}

	fields := []struct {
		name, value string
	}{
		{"description", in.Description},
		{"honest_reason", in.HonestReason},
		{"associated_person", in.AssociatedPerson},
	}
	for _, f := range fields {
		if len([]rune(f.value)) > maxTextFieldLen {
			return models.Expense{}, &ValidationError{Field: f.name, Message: fmt.Sprintf("must be at most %d characters", maxTextFieldLen)}
		}
	}

	date := in.Date
	if !date.IsZero() {
		date = date.In(s.loc)
	}

	return models.Expense{
		Amount:           in.Amount,
		Category:         NormalizeCategory(in.Category),
		ExpenseType:      typ,
		Description:      strings.TrimSpace(in.Description),
		HonestReason:     strings.TrimSpace(in.HonestReason),
		AssociatedPerson: strings.TrimSpace(in.AssociatedPerson),
		Date:             date,
	}, nil
}
