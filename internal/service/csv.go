package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"expense_tracker/internal/models"

	"github.com/shopspring/decimal"
)

const (
	csvDateTimeLayout = "2006-01-02 15:04"
	csvDateLayout     = "2006-01-02"

	maxAssociatedPersonLen = 256

	// MaxReportedRowErrors caps how many row errors an import surfaces individually.
	MaxReportedRowErrors = 5
)

// MaxAmount bounds the magnitude of a single expense so sums stay finite.
var MaxAmount = decimal.New(1, 12)

// groupedAmount matches comma thousands grouping: 1,234,567.89 or the Indian 12,34,567.89.
var groupedAmount = regexp.MustCompile(`^[+-]?(\d{1,3}(,\d{3})+|\d{1,2}(,\d{2})*,\d{3})(\.\d*)?$`)

// CSVHeader is the exported column order.
var CSVHeader = []string{"Date", "Category", "Type", "Description", "Honest Reason", "Associated Person", "Amount"}

// ErrMalformedCSV means the file structure could not be read; nothing from it is imported.
var ErrMalformedCSV = errors.New("malformed CSV")

// Column aliases after header normalization.
var (
	dateColumns = []string{"date", "timestamp"}
	typeColumns = []string{"expense_type", "type"}
)

// WriteCSV writes expenses in the given order with dates rendered in loc.
func WriteCSV(w io.Writer, expenses []models.Expense, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		record := []string{
			e.Date.In(loc).Format(csvDateTimeLayout),
			e.Category,
			e.ExpenseType,
			e.Description,
			e.HonestReason,
			e.AssociatedPerson,
			FormatMoney(e.Amount),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for expense %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// RowError describes why one CSV row was skipped. Line is the 1-based line in the file
// where the record starts, so the first data row is usually line 2.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e RowError) String() string {
	return fmt.Sprintf("Row %d: %s", e.Line, e.Message)
}

// ImportOptions controls value coercion during ParseCSV.
type ImportOptions struct {
	Location     *time.Location
	Now          time.Time // used for rows without a date
	CurrencyCode string    // stripped from amounts in addition to "$"
}

// ParsedCSV is the outcome of a row-wise parse: good rows and per-row failures.
type ParsedCSV struct {
	Expenses []models.Expense
	Errors   []RowError
}

// ParseCSV reads an uploaded expense file leniently. Bad rows are collected in Errors and
// parsing continues; a structural problem returns an error wrapping ErrMalformedCSV.
// Returned expenses carry no UserID.
func ParseCSV(r io.Reader, opts ImportOptions) (ParsedCSV, error) {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().In(opts.Location)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return ParsedCSV{}, fmt.Errorf("%w: file is empty", ErrMalformedCSV)
	}
	if err != nil {
		return ParsedCSV{}, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[normalizeColumn(h)] = i
	}

	var out ParsedCSV
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParsedCSV{}, fmt.Errorf("%w: %v", ErrMalformedCSV, err)
		}
		line, _ := cr.FieldPos(0)
		if len(record) > len(header) {
			return ParsedCSV{}, fmt.Errorf("%w: row %d has %d fields, header has %d",
				ErrMalformedCSV, line, len(record), len(header))
		}

		row := csvRow{record: record, columns: columns}
		e, err := row.expense(opts)
		if err != nil {
			out.Errors = append(out.Errors, RowError{Line: line, Message: err.Error()})
			continue
		}
		out.Expenses = append(out.Expenses, e)
	}
	return out, nil
}

func normalizeColumn(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

type csvRow struct {
	record  []string
	columns map[string]int
}

// get returns the trimmed value of the first alias present in the row.
func (r csvRow) get(aliases ...string) (string, bool) {
	for _, a := range aliases {
		i, ok := r.columns[a]
		if !ok || i >= len(r.record) {
			continue
		}
		return strings.TrimSpace(r.record[i]), true
	}
	return "", false
}

func (r csvRow) expense(opts ImportOptions) (models.Expense, error) {
	rawAmount, _ := r.get("amount")
	amount, err := ParseAmount(rawAmount, opts.CurrencyCode)
	if err != nil {
		return models.Expense{}, err
	}

	category, _ := r.get("category")

	date := opts.Now
	if rawDate, _ := r.get(dateColumns...); rawDate != "" {
		if date, err = parseCSVDate(rawDate, opts.Location); err != nil {
			return models.Expense{}, err
		}
	}

	typ, _ := r.get(typeColumns...)
	typ = strings.ToLower(typ)
	switch typ {
	case "":
		typ = models.TypeNonEssential
	case models.TypeEssential, models.TypeNonEssential:
	default:
		return models.Expense{}, fmt.Errorf("invalid expense type %q", typ)
	}

	description, _ := r.get("description")
	honestReason, _ := r.get("honest_reason")
	person, _ := r.get("associated_person")
	if len([]rune(person)) > maxAssociatedPersonLen {
		return models.Expense{}, fmt.Errorf("associated person longer than %d characters", maxAssociatedPersonLen)
	}

	return models.Expense{
		Amount:           amount,
		Category:         NormalizeCategory(category),
		ExpenseType:      typ,
		Description:      description,
		HonestReason:     honestReason,
		AssociatedPerson: person,
		Date:             date,
	}, nil
}

// ParseAmount strips "$", the currency code and spaces, then parses the remaining decimal
// number. Commas are accepted only as thousands grouping; "12,50" is rejected rather than
// read as 1250. Magnitudes above MaxAmount are rejected.
func ParseAmount(raw, currencyCode string) (float64, error) {
	s := strings.ReplaceAll(raw, "$", "")
	if currencyCode != "" {
		s = strings.ReplaceAll(strings.ToUpper(s), strings.ToUpper(currencyCode), "")
	}
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return 0, errors.New("missing amount")
	}
	if strings.Contains(s, ",") {
		if !groupedAmount.MatchString(s) {
			return 0, fmt.Errorf("invalid amount %q: commas are only allowed as thousands separators", strings.TrimSpace(raw))
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", strings.TrimSpace(raw))
	}
	if d.Abs().GreaterThan(MaxAmount) {
		return 0, fmt.Errorf("amount %q is out of range", strings.TrimSpace(raw))
	}
	f, _ := d.Float64()
	return f, nil
}

func parseCSVDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range []string{csvDateTimeLayout, csvDateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD HH:MM or YYYY-MM-DD", s)
}
