package projections

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/schedule"
)

// AttendanceStatsQuery carries input for the statistics projection.
type AttendanceStatsQuery struct {
	Session account.Session
	Start   time.Time
	End     time.Time
	Group   string
	// Member selects a per-member history. Optional.
	Member string
}

// PivotRow is one member's attendance count per column.
type PivotRow struct {
	Name   string `json:"name"`
	Counts []int  `json:"counts"` // aligned with AttendanceStatsResult.Columns
	Total  int    `json:"total"`
}

// DailyRow is one date's attendance count per column.
type DailyRow struct {
	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"`
	Counts  []int     `json:"counts"` // aligned with AttendanceStatsResult.Columns
	Total   int       `json:"total"`
}

// RankEntry is one member's total in the ranking.
type RankEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// HistoryRow is one record of the selected member. Date, Meeting and Group are
// the editable fields.
type HistoryRow struct {
	Date    time.Time `json:"date"`
	Weekday string    `json:"weekday"`
	Meeting string    `json:"meeting"`
	Group   string    `json:"group"`
}

// AttendanceStatsResult carries the output of the statistics projection.
type AttendanceStatsResult struct {
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	Group         string      `json:"group"`
	Columns       []string    `json:"columns"`
	Pivot         []PivotRow  `json:"pivot"`
	Daily         []DailyRow  `json:"daily"`
	MeetingTotals []int       `json:"meeting_totals"`
	Ranking       []RankEntry `json:"ranking"`
	// Top holds every member tied at TopCount. Nil when nothing matched.
	Top      []string     `json:"top"`
	TopCount int          `json:"top_count"`
	History  []HistoryRow `json:"history"`
	Records  int          `json:"records"`
}

// Empty reports whether no record matched the filter.
func (r AttendanceStatsResult) Empty() bool {
	return r.Records == 0
}

// AttendanceStatsDeps holds dependencies for the statistics projection.
type AttendanceStatsDeps struct {
	Store RecordReader
}

// QueryAttendanceStats filters attendance to a date range and group, then
// derives the pivot, daily counts, meeting totals, ranking and optional history.
// PRE: query.Start and query.End are set; query.Group is a group or the all scope
// POST: Columns always start with schedule.CanonicalMeetings; an empty range is not an error
func QueryAttendanceStats(ctx context.Context, query AttendanceStatsQuery, deps AttendanceStatsDeps) (AttendanceStatsResult, error) {
	if query.Start.IsZero() || query.End.IsZero() {
		return AttendanceStatsResult{}, fmt.Errorf("start and end are required: %w", schedule.ErrInvalidDate)
	}
	start, end := schedule.Day(query.Start), schedule.Day(query.End)
	if end.Before(start) {
		return AttendanceStatsResult{}, fmt.Errorf("end %s before start %s: %w",
			schedule.FormatDate(end), schedule.FormatDate(start), schedule.ErrInvalidDate)
	}
	scope := strings.TrimSpace(query.Group)
	if scope == "" {
		scope = query.Session.DefaultGroup()
	}
	if err := query.Session.CheckGroup(scope); err != nil {
		return AttendanceStatsResult{}, err
	}

	records, err := loadAttendance(ctx, deps.Store)
	if err != nil {
		return AttendanceStatsResult{}, err
	}
	filtered := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if schedule.InRange(r.Date, start, end) && inScope(r.Group, scope) {
			filtered = append(filtered, r)
		}
	}

	result := summarize(filtered)
	result.Start, result.End, result.Group = start, end, scope
	if name := strings.TrimSpace(query.Member); name != "" {
		result.History = memberHistory(filtered, name)
	}
	return result, nil
}

// summarize builds every table over an already-filtered record set.
func summarize(records []attendance.Record) AttendanceStatsResult {
	columns := statsColumns(records)
	col := make(map[string]int, len(columns))
	for i, c := range columns {
		col[c] = i
	}

	pivot := make(map[string]*PivotRow)
	daily := make(map[string]*DailyRow)
	totals := make([]int, len(columns))
	for _, r := range records {
		i := col[r.Meeting]
		totals[i]++

		p, ok := pivot[r.Name]
		if !ok {
			p = &PivotRow{Name: r.Name, Counts: make([]int, len(columns))}
			pivot[r.Name] = p
		}
		p.Counts[i]++
		p.Total++

		key := schedule.FormatDate(r.Date)
		d, ok := daily[key]
		if !ok {
			day := schedule.Day(r.Date)
			d = &DailyRow{Date: day, Weekday: schedule.WeekdayLabel(day), Counts: make([]int, len(columns))}
			daily[key] = d
		}
		d.Counts[i]++
		d.Total++
	}

	c := newCollator()
	result := AttendanceStatsResult{
		Columns:       columns,
		Pivot:         make([]PivotRow, 0, len(pivot)),
		Daily:         make([]DailyRow, 0, len(daily)),
		MeetingTotals: totals,
		Ranking:       make([]RankEntry, 0, len(pivot)),
		Records:       len(records),
	}
	for _, p := range pivot {
		result.Pivot = append(result.Pivot, *p)
	}
	sort.Slice(result.Pivot, func(i, j int) bool {
		return c.CompareString(result.Pivot[i].Name, result.Pivot[j].Name) < 0
	})
	for _, d := range daily {
		result.Daily = append(result.Daily, *d)
	}
	sort.Slice(result.Daily, func(i, j int) bool {
		return result.Daily[i].Date.After(result.Daily[j].Date)
	})

	for _, p := range result.Pivot {
		result.Ranking = append(result.Ranking, RankEntry{Name: p.Name, Count: p.Total})
	}
	// Pivot is already in collation order, so a stable sort keeps ties by name.
	sort.SliceStable(result.Ranking, func(i, j int) bool {
		return result.Ranking[i].Count > result.Ranking[j].Count
	})
	result.Top, result.TopCount = topTied(result.Ranking)
	return result
}

// statsColumns returns the canonical meetings followed by any other meeting seen, sorted.
func statsColumns(records []attendance.Record) []string {
	columns := append([]string{}, schedule.CanonicalMeetings...)
	extra := make(map[string]bool)
	for _, r := range records {
		if schedule.CanonicalIndex(r.Meeting) < 0 {
			extra[r.Meeting] = true
		}
	}
	names := make([]string, 0, len(extra))
	for m := range extra {
		names = append(names, m)
	}
	sort.Strings(names)
	return append(columns, names...)
}

// topTied returns every entry tied at the highest count.
// INVARIANT: ties are never broken; order follows the ranking
func topTied(ranking []RankEntry) ([]string, int) {
	if len(ranking) == 0 || ranking[0].Count == 0 {
		return nil, 0
	}
	best := ranking[0].Count
	var top []string
	for _, r := range ranking {
		if r.Count != best {
			break
		}
		top = append(top, r.Name)
	}
	return top, best
}

// memberHistory lists one member's records, newest first.
func memberHistory(records []attendance.Record, name string) []HistoryRow {
	out := make([]HistoryRow, 0)
	for _, r := range records {
		if r.Name != name {
			continue
		}
		day := schedule.Day(r.Date)
		out = append(out, HistoryRow{Date: day, Weekday: schedule.WeekdayLabel(day), Meeting: r.Meeting, Group: r.Group})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return schedule.CanonicalIndex(out[i].Meeting) < schedule.CanonicalIndex(out[j].Meeting)
	})
	return out
}

// WeeklyStatsQuery carries input for the weekly statistics projection.
type WeeklyStatsQuery struct {
	Session account.Session
	Anchor  time.Time
	Group   string
}

// QueryWeeklyStats runs QueryAttendanceStats over the Sunday..Saturday week containing Anchor.
// PRE: query.Anchor is set
// POST: Result.Start is a Sunday and Result.End the following Saturday
func QueryWeeklyStats(ctx context.Context, query WeeklyStatsQuery, deps AttendanceStatsDeps) (AttendanceStatsResult, error) {
	if query.Anchor.IsZero() {
		return AttendanceStatsResult{}, fmt.Errorf("anchor date is required: %w", schedule.ErrInvalidDate)
	}
	start, end := schedule.WeekRange(query.Anchor)
	return QueryAttendanceStats(ctx, AttendanceStatsQuery{
		Session: query.Session,
		Start:   start,
		End:     end,
		Group:   query.Group,
	}, deps)
}
