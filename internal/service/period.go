package service

import (
	"strings"
	"time"
)

// Period tokens accepted by ResolvePeriod.
const (
	PeriodDay      = "day"
	PeriodWeek     = "week"
	PeriodMonth    = "month"
	PeriodYear     = "year"
	PeriodSpecific = "specific"
	PeriodAll      = "all"

	DefaultPeriod = PeriodMonth

	specificDateLayout = "2006-01-02"
)

// Period is a resolved half-open interval [Start, End). A zero bound is unbounded.
type Period struct {
	Name  string    `json:"name"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
	Label string    `json:"label"`
	// Date is the requested day for "specific" periods.
	Date string `json:"date,omitempty"`
	// Fallback is set when a "specific" date could not be parsed and today was used instead.
	Fallback bool `json:"fallback,omitempty"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && !t.Before(p.End) {
		return false
	}
	return true
}

// Slug is a filename-safe identifier for the period.
func (p Period) Slug() string {
	if p.Name == PeriodSpecific && !p.Fallback {
		return p.Date
	}
	return p.Name
}

// ResolvePeriod maps a period token to a concrete interval around now, in now's location.
// Unknown tokens resolve to the default period. An unparseable specific date degrades to
// today's full interval instead of failing the request.
func ResolvePeriod(name, specificDate string, now time.Time) Period {
	name = strings.ToLower(strings.TrimSpace(name))
	today := midnight(now)

	switch name {
	case PeriodDay:
		return Period{Name: PeriodDay, Start: today, End: today.AddDate(0, 0, 1), Label: "today"}
	case PeriodWeek:
		// Monday is day 0 of the week.
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return Period{Name: PeriodWeek, Start: start, End: start.AddDate(0, 0, 7), Label: "this week"}
	case PeriodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return Period{Name: PeriodMonth, Start: start, End: start.AddDate(0, 1, 0), Label: "this month"}
	case PeriodYear:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Period{Name: PeriodYear, Start: start, End: start.AddDate(1, 0, 0), Label: "this year"}
	case PeriodSpecific:
		specificDate = strings.TrimSpace(specificDate)
		day, err := time.ParseInLocation(specificDateLayout, specificDate, now.Location())
		if err != nil {
			return Period{
				Name:     PeriodSpecific,
				Start:    today,
				End:      today.AddDate(0, 0, 1),
				Label:    "today",
				Date:     today.Format(specificDateLayout),
				Fallback: true,
			}
		}
		return Period{
			Name:  PeriodSpecific,
			Start: day,
			End:   day.AddDate(0, 0, 1),
			Label: day.Format("January 2, 2006"),
			Date:  day.Format(specificDateLayout),
		}
	case PeriodAll:
		return Period{Name: PeriodAll, Label: "all time"}
	default:
		return ResolvePeriod(DefaultPeriod, "", now)
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
