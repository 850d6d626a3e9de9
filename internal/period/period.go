// Package period implements the calendar arithmetic behind the day, week,
// and month pickers: week numbering, week and month anchors, and the
// canonical YYYY-MM-DD strings the dashboard API expects.
package period

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrWeekOutOfRange is returned when a week number is outside
	// [1, WeeksInYear(year)].
	ErrWeekOutOfRange = errors.New("week out of range")

	// ErrMonthOutOfRange is returned when a month is outside [1, 12].
	ErrMonthOutOfRange = errors.New("month out of range")

	// ErrUnknownKind is returned for a kind other than day, week, or month.
	ErrUnknownKind = errors.New("unknown period kind")
)

// Kind identifies the granularity of a Period.
type Kind int

const (
	KindDay Kind = iota
	KindWeek
	KindMonth
)

// String returns the daily-type token the API uses for this kind.
func (k Kind) String() string {
	switch k {
	case KindDay:
		return "daily"
	case KindWeek:
		return "weekly"
	case KindMonth:
		return "monthly"
	default:
		return "unknown"
	}
}

// KindFromDailyType maps an API daily-type token to a Kind.
func KindFromDailyType(s string) (Kind, error) {
	switch s {
	case "daily":
		return KindDay, nil
	case "weekly":
		return KindWeek, nil
	case "monthly":
		return KindMonth, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Period is an immutable selection from one of the pickers. The zero
// value is not a valid period; use Day, Week, Month, or FromCanonical.
type Period struct {
	kind  Kind
	year  int
	week  int
	month time.Month
	date  time.Time
}

// Day returns the period for the calendar date of t.
func Day(t time.Time) Period {
	d := civil(t)
	return Period{kind: KindDay, year: d.Year(), month: d.Month(), date: d}
}

// Week returns the period for week of year.
func Week(year, week int) (Period, error) {
	if week < 1 || week > WeeksInYear(year) {
		return Period{}, fmt.Errorf("%w: %d has %d weeks, got %d",
			ErrWeekOutOfRange, year, WeeksInYear(year), week)
	}
	return Period{kind: KindWeek, year: year, week: week, date: MondayOfWeek(year, week)}, nil
}

// Month returns the period for month of year.
func Month(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("%w: %d", ErrMonthOutOfRange, month)
	}
	return Period{kind: KindMonth, year: year, month: month, date: FirstOfMonth(year, month)}, nil
}

// Containing returns the period of the given kind that contains t.
func Containing(kind Kind, t time.Time) (Period, error) {
	d := civil(t)
	switch kind {
	case KindDay:
		return Day(d), nil
	case KindWeek:
		return Week(d.Year(), WeekOfDate(d))
	case KindMonth:
		return Month(d.Year(), d.Month())
	default:
		return Period{}, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
}

// FromCanonical parses a canonical YYYY-MM-DD string into the period of
// the given kind that contains it.
func FromCanonical(kind Kind, s string) (Period, error) {
	t, err := ParseDate(s)
	if err != nil {
		return Period{}, err
	}
	return Containing(kind, t)
}

// Kind returns the granularity of p.
func (p Period) Kind() Kind { return p.kind }

// Year returns the calendar year p belongs to.
func (p Period) Year() int { return p.year }

// WeekNumber returns the week number of a week period and 0 otherwise.
func (p Period) WeekNumber() int { return p.week }

// MonthOf returns the month of a day or month period.
func (p Period) MonthOf() time.Month { return p.month }

// Anchor returns the representative date: the day itself, the Monday of
// the week, or the first of the month.
func (p Period) Anchor() time.Time { return p.date }

// Canonical renders the anchor as YYYY-MM-DD.
func (p Period) Canonical() string { return FormatDate(p.date) }

// IsZero reports whether p was never constructed.
func (p Period) IsZero() bool { return p.date.IsZero() }

// Label renders p the way the pickers display the current selection.
func (p Period) Label() string {
	switch p.kind {
	case KindWeek:
		return fmt.Sprintf("%d년 %d주 (%d/%d)",
			p.year, p.week, int(p.date.Month()), p.date.Day())
	case KindMonth:
		return fmt.Sprintf("%d년 %d월", p.year, int(p.month))
	default:
		return p.Canonical()
	}
}

// Prev returns the period immediately before p.
func (p Period) Prev() Period {
	switch p.kind {
	case KindWeek:
		if p.week == 1 {
			prev, _ := Week(p.year-1, WeeksInYear(p.year-1))
			return prev
		}
		prev, _ := Week(p.year, p.week-1)
		return prev
	case KindMonth:
		prev, _ := Month(p.date.AddDate(0, -1, 0).Year(), p.date.AddDate(0, -1, 0).Month())
		return prev
	default:
		return Day(p.date.AddDate(0, 0, -1))
	}
}

// Next returns the period immediately after p.
func (p Period) Next() Period {
	switch p.kind {
	case KindWeek:
		if p.week == WeeksInYear(p.year) {
			next, _ := Week(p.year+1, 1)
			return next
		}
		next, _ := Week(p.year, p.week+1)
		return next
	case KindMonth:
		next, _ := Month(p.date.AddDate(0, 1, 0).Year(), p.date.AddDate(0, 1, 0).Month())
		return next
	default:
		return Day(p.date.AddDate(0, 0, 1))
	}
}

// Contains reports whether t falls within p.
func (p Period) Contains(t time.Time) bool {
	q, err := Containing(p.kind, t)
	if err != nil {
		return false
	}
	return q.kind == p.kind && q.date.Equal(p.date)
}
