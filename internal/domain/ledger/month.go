package ledger

import (
	"fmt"
	"strings"
	"time"
)

// TrailingMonths is the length of the revenue window used for bracket selection
const TrailingMonths = 12

// Window is a half-open time range [Start, End)
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// MonthOf returns the first instant of t's month in UTC
func MonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DateOf truncates t to its calendar day in UTC
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthWindow returns [month start, next month start)
func MonthWindow(month time.Time) Window {
	start := MonthOf(month)
	return Window{Start: start, End: start.AddDate(0, 1, 0)}
}

// TrailingWindow returns the window covering the n months ending with month, inclusive
func TrailingWindow(month time.Time, n int) Window {
	if n < 1 {
		n = 1
	}
	start := MonthOf(month)
	return Window{Start: start.AddDate(0, -(n - 1), 0), End: start.AddDate(0, 1, 0)}
}

// RecentMonths returns the n month buckets ending with now's month, most recent first
func RecentMonths(now time.Time, n int) []time.Time {
	current := MonthOf(now)
	months := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, current.AddDate(0, -i, 0))
	}
	return months
}

// ParseMonth accepts YYYY-MM or YYYY-MM-DD and returns the month bucket
func ParseMonth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

// ValidateMonth rejects zero months and months after now's month
func ValidateMonth(month, now time.Time) error {
	if month.IsZero() {
		return fmt.Errorf("%w: month is required", ErrInvalidMonth)
	}
	if MonthOf(month).After(MonthOf(now)) {
		return fmt.Errorf("%w: %s is in the future", ErrInvalidMonth, MonthOf(month).Format("2006-01"))
	}
	return nil
}
