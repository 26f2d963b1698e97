// Package lunar converts Korean/Chinese lunisolar dates to the Gregorian calendar
// and projects recurring lunar anniversaries onto a solar month.
package lunar

import (
	"sort"

	"github.com/6tail/lunar-go/calendar"
)

// Solar is a Gregorian calendar date.
type Solar struct {
	Year  int
	Month int
	Day   int
}

// ResolveToSolar converts a lunar date to its solar equivalent.
// A negative lunarMonth denotes the leap month of that number.
// PRE: none
// POST: ok is false when the lunar date does not exist or is outside the table's coverage
func ResolveToSolar(lunarYear, lunarMonth, lunarDay int) (s Solar, ok bool) {
	if lunarYear <= 0 || lunarMonth == 0 || lunarMonth > 12 || lunarMonth < -12 || lunarDay <= 0 || lunarDay > 30 {
		return Solar{}, false
	}
	// lunar-go panics on days missing from a short month and on years it has no data for.
	defer func() {
		if recover() != nil {
			s, ok = Solar{}, false
		}
	}()
	l := calendar.NewLunarFromYmd(lunarYear, lunarMonth, lunarDay)
	if l == nil {
		return Solar{}, false
	}
	sol := l.GetSolar()
	return Solar{Year: sol.GetYear(), Month: sol.GetMonth(), Day: sol.GetDay()}, true
}

// Project finds the solar days in (year, month) on which a recurring lunar
// (lunarMonth, lunarDay) anniversary falls.
// Lunar years year-1, year and year+1 are evaluated: a late lunar date can land in
// the next solar January or February, an early one in the prior December.
// PRE: month in 1..12
// POST: Returns sorted, de-duplicated days; empty when nothing lands in the month
func Project(year, month, lunarMonth, lunarDay int) []int {
	seen := make(map[int]bool)
	var days []int
	for _, ly := range []int{year - 1, year, year + 1} {
		s, ok := ResolveToSolar(ly, lunarMonth, lunarDay)
		if !ok || s.Year != year || s.Month != month {
			continue
		}
		if !seen[s.Day] {
			seen[s.Day] = true
			days = append(days, s.Day)
		}
	}
	sort.Ints(days)
	return days
}
