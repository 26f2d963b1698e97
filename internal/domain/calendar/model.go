// Package calendar builds the monthly birthday calendar.
package calendar

import (
	"errors"
	"time"

	"hoejeong/internal/domain/lunar"
	"hoejeong/internal/domain/member"
)

// ErrInvalidMonth is returned for a month outside 1..12.
var ErrInvalidMonth = errors.New("month must be between 1 and 12")

// Badge is one birthday shown on a calendar day.
type Badge struct {
	DisplayName string `json:"display_name"`
	Group       string `json:"group"`
	IsLunar     bool   `json:"is_lunar"`
}

// Month is a month view: birthday badges keyed by day of month, plus the
// Sunday-first grid used to lay the days out.
type Month struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Days  map[int][]Badge `json:"days"`
	// Grid rows are weeks starting Sunday; 0 marks a padding cell.
	Grid [][7]int `json:"grid"`
	// Today is the current day of month when this is the current month, else 0.
	Today int `json:"today"`
}

// Build projects every member's birthday onto (year, month).
// Solar birthdays match on month directly; lunar birthdays are projected via
// lunar.Project. Members whose birthday text does not parse are skipped.
// PRE: month in 1..12
// POST: Each day's badges are unique by display name and keep roster order
func Build(year, month int, members []member.Member, now time.Time) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, ErrInvalidMonth
	}
	out := Month{
		Year:  year,
		Month: month,
		Days:  make(map[int][]Badge),
		Grid:  Grid(year, month),
	}
	if now.Year() == year && int(now.Month()) == month {
		out.Today = now.Day()
	}

	type dayName struct {
		day  int
		name string
	}
	seen := make(map[dayName]bool)
	add := func(day int, m member.Member) {
		k := dayName{day: day, name: m.Name}
		if seen[k] {
			return
		}
		seen[k] = true
		out.Days[day] = append(out.Days[day], Badge{DisplayName: m.Name, Group: m.Group, IsLunar: m.Lunar})
	}

	for _, m := range members {
		bm, bd, ok := member.ParseBirthday(m.Birthday)
		if !ok {
			continue
		}
		if m.Lunar {
			for _, day := range lunar.Project(year, month, bm, bd) {
				add(day, m)
			}
			continue
		}
		if bm == month && bd <= DaysIn(year, month) {
			add(bd, m)
		}
	}
	return out, nil
}

// Grid returns the Sunday-first week rows of a month, padded with zeros.
func Grid(year, month int) [][7]int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())
	days := DaysIn(year, month)

	var grid [][7]int
	var week [7]int
	col := offset
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			grid = append(grid, week)
			week = [7]int{}
			col = 0
		}
	}
	if col > 0 {
		grid = append(grid, week)
	}
	return grid
}

// DaysIn returns the number of days in a month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
