package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/member"
	"hoejeong/internal/domain/schedule"
)

// ReconcileMark is one member's row on the check-in sheet.
// Group may be left empty when the name is unique in scope.
type ReconcileMark struct {
	Name    string          `json:"name"`
	Group   string          `json:"group"`
	Present map[string]bool `json:"present"`
}

// ReconcileAttendanceInput carries one check-in sheet submission.
type ReconcileAttendanceInput struct {
	Session  account.Session
	Date     time.Time
	Group    string // scope; see schedule.IsAllGroups
	Meetings []string
	Marks    []ReconcileMark
}

// ReconcileAttendanceDeps holds dependencies for ReconcileAttendance.
type ReconcileAttendanceDeps struct {
	Store  RecordStore
	Locker TableLocker
}

// ReconcileAttendanceResult reports what the write changed.
type ReconcileAttendanceResult struct {
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
	// Groups are the groups whose cells were overwritten.
	Groups  []string `json:"groups"`
	Written bool     `json:"written"`
}

type resolvedMark struct {
	name    string
	group   string
	present map[string]bool
}

// ExecuteReconcileAttendance makes the stored present-set of each
// (date, meeting, group) cell equal to the submitted sheet.
// For the all-groups scope only groups represented by at least one mark are
// overwritten; other groups' records are left alone. Rows a marked member has
// filed under an all-groups spelling ("전체 보기") are part of the cell too.
// PRE: Date set; every meeting is held on Date for the scope; session may act on the scope
// POST: Select(cell) equals the submitted marks; rows outside the cell are unchanged
// INVARIANT: attendance_log is written at most once, against the version it was read at
func ExecuteReconcileAttendance(ctx context.Context, input ReconcileAttendanceInput, deps ReconcileAttendanceDeps) (ReconcileAttendanceResult, error) {
	if input.Date.IsZero() {
		return ReconcileAttendanceResult{}, attendance.ErrMissingDate
	}
	scope := strings.TrimSpace(input.Group)
	allGroups := schedule.IsAllGroups(scope)
	if err := input.Session.CheckGroup(scope); err != nil {
		return ReconcileAttendanceResult{}, err
	}
	date := schedule.Day(input.Date)

	meetings, err := askableMeetings(date, scope, input.Meetings)
	if err != nil {
		return ReconcileAttendanceResult{}, err
	}
	if len(meetings) == 0 {
		return ReconcileAttendanceResult{}, nil
	}

	var result ReconcileAttendanceResult
	err = withTableLock(ctx, deps.Locker, storage.TableAttendance, func() error {
		roster, err := loadRoster(ctx, deps.Store)
		if err != nil {
			return err
		}
		marks, err := resolveMarks(input.Session, roster, scope, allGroups, input.Marks)
		if err != nil {
			return err
		}

		groups := []string{scope}
		if allGroups {
			groups = representedGroups(marks)
			if len(groups) == 0 {
				return nil
			}
		}

		snap, err := deps.Store.ReadAll(ctx, storage.TableAttendance)
		if err != nil {
			return fmt.Errorf("read attendance: %w", err)
		}
		ledger := attendance.NewLedger(snap.Rows)

		var present []attendance.Record
		for _, m := range marks {
			for _, meeting := range meetings {
				if !m.present[meeting] {
					continue
				}
				present = append(present, attendance.Record{
					Date:    date,
					Meeting: meeting,
					Name:    m.name,
					Group:   m.group,
					Status:  attendance.StatusPresent,
				})
			}
		}

		cell := attendance.Cell{Date: date, Meetings: meetings, Groups: groups, Names: markNames(marks)}
		deleted, inserted, err := ledger.Overwrite(cell, present)
		if err != nil {
			return err
		}
		if err := deps.Store.ReplaceAll(ctx, storage.TableAttendance, ledger.Rows(), snap.Version); err != nil {
			return fmt.Errorf("write attendance: %w", err)
		}
		result = ReconcileAttendanceResult{Deleted: deleted, Inserted: inserted, Groups: groups, Written: true}
		return nil
	})
	if err != nil {
		return ReconcileAttendanceResult{}, err
	}

	slog.Info("attendance_event", "event", "attendance_reconciled",
		"date", schedule.FormatDate(date), "scope", scope, "meetings", meetings,
		"groups", result.Groups, "deleted", result.Deleted, "inserted", result.Inserted,
		"written", result.Written, "by", input.Session.Login)
	return result, nil
}

// askableMeetings trims and dedupes the submitted columns and checks each is held that day.
func askableMeetings(date time.Time, scope string, columns []string) ([]string, error) {
	weekday := schedule.WeekdayIndex(date)
	seen := make(map[string]bool, len(columns))
	var out []string
	for _, c := range columns {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		if !schedule.Default.IsAskable(weekday, scope, c) {
			return nil, fmt.Errorf("%s on %s (%s): %w", c, schedule.FormatDate(date), schedule.WeekdayLabel(date), attendance.ErrMeetingNotScheduled)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

// resolveMarks pins every mark to a roster member in scope.
func resolveMarks(session account.Session, roster []member.Member, scope string, allGroups bool, marks []ReconcileMark) ([]resolvedMark, error) {
	out := make([]resolvedMark, 0, len(marks))
	for _, mk := range marks {
		name := strings.TrimSpace(mk.Name)
		if name == "" {
			return nil, attendance.ErrEmptyName
		}
		group := strings.TrimSpace(mk.Group)
		if !allGroups {
			if group != "" && group != scope {
				return nil, fmt.Errorf("%s/%s outside %s: %w", group, name, scope, account.ErrForbiddenGroup)
			}
			group = scope
		}

		if group != "" {
			if !onRoster(roster, group, name) {
				return nil, fmt.Errorf("%s/%s: %w", group, name, member.ErrUnknownMember)
			}
		} else {
			candidates := groupsNamed(roster, name)
			switch len(candidates) {
			case 0:
				return nil, fmt.Errorf("%s: %w", name, member.ErrUnknownMember)
			case 1:
				group = candidates[0]
			default:
				return nil, fmt.Errorf("%s in %s: %w", name, strings.Join(candidates, ", "), member.ErrAmbiguousMember)
			}
		}
		if err := session.CheckGroup(group); err != nil {
			return nil, fmt.Errorf("%s: %w", group, err)
		}
		present := make(map[string]bool, len(mk.Present))
		for meeting, ok := range mk.Present {
			if ok {
				present[strings.TrimSpace(meeting)] = true
			}
		}
		out = append(out, resolvedMark{name: name, group: group, present: present})
	}
	return out, nil
}

// groupsNamed lists the distinct groups holding a member called name.
func groupsNamed(roster []member.Member, name string) []string {
	var out []string
	for _, m := range roster {
		if m.Name == name && !contains(out, m.Group) {
			out = append(out, m.Group)
		}
	}
	return out
}

func representedGroups(marks []resolvedMark) []string {
	var out []string
	for _, m := range marks {
		if !contains(out, m.group) {
			out = append(out, m.group)
		}
	}
	return out
}

func markNames(marks []resolvedMark) []string {
	var out []string
	for _, m := range marks {
		if !contains(out, m.name) {
			out = append(out, m.name)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
