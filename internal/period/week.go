package period

import (
	"fmt"
	"time"
)

// DateLayout is the canonical YYYY-MM-DD layout exchanged with the API.
const DateLayout = "2006-01-02"

// civil strips the clock and location from t, keeping its calendar date.
// All arithmetic in this package runs on UTC midnights so day differences
// are exact multiples of 24h.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FirstMonday returns the Monday that starts week 1 of year. This is the
// Monday on or before January 1, except when January 1 is a Sunday, in
// which case week 1 starts on January 2.
func FirstMonday(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)

	wd := jan1.Weekday()
	if wd == time.Sunday {
		return jan1.AddDate(0, 0, 1)
	}
	return jan1.AddDate(0, 0, -(int(wd) - 1))
}

// WeekOfDate returns the 1-based week number of t within its own calendar
// year. Dates before the first Monday (only January 1 of a Sunday-start
// year) belong to week 1.
func WeekOfDate(t time.Time) int {
	d := civil(t)
	days := int(d.Sub(FirstMonday(d.Year())).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// MondayOfWeek returns the date week starts on in year. Week 1 of a year
// whose first Monday falls in December of the previous year is clamped to
// January 1.
func MondayOfWeek(year, week int) time.Time {
	monday := FirstMonday(year).AddDate(0, 0, 7*(week-1))
	if monday.Year() < year {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return monday
}

// WeeksInYear returns the number of selectable weeks in year.
func WeeksInYear(year int) int {
	return WeekOfDate(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
}

// FirstOfMonth returns the first day of month in year.
func FirstOfMonth(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

// WeekOption is one entry of a week selector.
type WeekOption struct {
	Week   int
	Monday time.Time
}

// Label renders the option the way the week selector lists it.
func (o WeekOption) Label() string {
	return fmt.Sprintf("%d주차 (%d/%d)", o.Week, int(o.Monday.Month()), o.Monday.Day())
}

// WeekOptions lists every selectable week of year in order.
func WeekOptions(year int) []WeekOption {
	n := WeeksInYear(year)
	opts := make([]WeekOption, 0, n)
	for w := 1; w <= n; w++ {
		opts = append(opts, WeekOption{Week: w, Monday: MondayOfWeek(year, w)})
	}
	return opts
}

// ParseDate parses a canonical YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as a canonical YYYY-MM-DD string.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
