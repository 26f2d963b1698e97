package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/schedule"
)

// AttendanceSheetQuery carries input for the check-in sheet projection.
type AttendanceSheetQuery struct {
	Session account.Session
	Date    time.Time
	Group   string
}

// SheetRow is one roster member with a present flag per meeting column.
type SheetRow struct {
	Name    string          `json:"name"`
	Group   string          `json:"group"`
	Present map[string]bool `json:"present"`
}

// AttendanceSheetResult is the check-in screen for one date and scope.
type AttendanceSheetResult struct {
	Date     time.Time  `json:"date"`
	Weekday  string     `json:"weekday"`
	Group    string     `json:"group"`
	Meetings []string   `json:"meetings"`
	Rows     []SheetRow `json:"rows"`
}

// AttendanceSheetDeps holds dependencies for the check-in sheet projection.
type AttendanceSheetDeps struct {
	Store RecordReader
}

// QueryAttendanceSheet builds the roster for a scope with the meetings held that
// day and each member's current marks.
// PRE: query.Date is set
// POST: Meetings is empty (not nil) when nothing is held; every row has a flag per meeting
func QueryAttendanceSheet(ctx context.Context, query AttendanceSheetQuery, deps AttendanceSheetDeps) (AttendanceSheetResult, error) {
	if query.Date.IsZero() {
		return AttendanceSheetResult{}, fmt.Errorf("date is required: %w", attendance.ErrMissingDate)
	}
	scope := strings.TrimSpace(query.Group)
	if scope == "" {
		scope = query.Session.DefaultGroup()
	}
	if err := query.Session.CheckGroup(scope); err != nil {
		return AttendanceSheetResult{}, err
	}

	day := schedule.Day(query.Date)
	result := AttendanceSheetResult{
		Date:     day,
		Weekday:  schedule.WeekdayLabel(day),
		Group:    scope,
		Meetings: schedule.MeetingsFor(schedule.WeekdayIndex(day), scope),
		Rows:     []SheetRow{},
	}

	roster, err := loadRoster(ctx, deps.Store)
	if err != nil {
		return AttendanceSheetResult{}, err
	}
	snap, err := deps.Store.ReadAll(ctx, storage.TableAttendance)
	if err != nil {
		return AttendanceSheetResult{}, fmt.Errorf("read attendance: %w", err)
	}
	ledger := attendance.NewLedger(snap.Rows)

	visible := roster[:0:0]
	for _, m := range roster {
		if inScope(m.Group, scope) {
			visible = append(visible, m)
		}
	}
	sortMembers(visible, newCollator())

	date := schedule.FormatDate(day)
	for _, m := range visible {
		row := SheetRow{Name: m.Name, Group: m.Group, Present: make(map[string]bool, len(result.Meetings))}
		for _, meeting := range result.Meetings {
			row.Present[meeting] = false
			for _, r := range ledger.Lookup(attendance.CellKey{Date: date, Meeting: meeting, Group: m.Group}) {
				if r.Name == m.Name {
					row.Present[meeting] = true
					break
				}
			}
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}
