package schedule

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the ISO date format used in every table.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("date must be YYYY-MM-DD")

var weekdayLabels = [7]string{"월", "화", "수", "목", "금", "토", "일"}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006.01.02",
	"2006/01/02",
	"2006.1.2",
	"2006/1/2",
	"2006-1-2",
}

// WeekdayIndex returns the Monday-based weekday index (Monday = 0, Sunday = 6).
func WeekdayIndex(d time.Time) int {
	return (int(d.Weekday()) + 6) % 7
}

// WeekdayLabel returns the Korean single-character label for d's weekday.
func WeekdayLabel(d time.Time) string {
	return weekdayLabels[WeekdayIndex(d)]
}

// WeekRange returns the Sunday..Saturday span containing d.
// PRE: none; every date is accepted
// POST: start is a Sunday, end is a Saturday, end - start == 6 days
// INVARIANT: start <= d <= end (compared as calendar dates)
func WeekRange(d time.Time) (time.Time, time.Time) {
	day := Day(d)
	back := (WeekdayIndex(day) + 1) % 7
	start := day.AddDate(0, 0, -back)
	return start, start.AddDate(0, 0, 6)
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a stored date string into a UTC calendar date.
// PRE: none
// POST: Returns ErrInvalidDate for anything not in a known layout
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Day(t), nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// FormatDate renders a date in DateLayout.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// InRange reports whether start <= d <= end, comparing calendar dates.
func InRange(d, start, end time.Time) bool {
	d = Day(d)
	return !d.Before(Day(start)) && !d.After(Day(end))
}
