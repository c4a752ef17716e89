package domain

import (
	"fmt"
	"time"
)

// DateLayout is the layout used for calendar days in files and APIs.
const DateLayout = "2006-01-02"

// Day truncates t to its calendar day at UTC midnight. The calendar fields
// of t are kept as they are, without converting between time zones first.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar day at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatDay formats a calendar day, returning "" for the zero time.
func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDay parses a calendar day written by FormatDay. An empty string is
// the zero time. RFC 3339 timestamps are accepted and truncated to their day.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: want %s", s, DateLayout)
	}
	return Day(t), nil
}

// DaysBetween returns the number of calendar days from start to end (inclusive).
// It returns 0 when end is before start.
func DaysBetween(start, end time.Time) int {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
