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
	"hoejeong/internal/domain/schedule"
)

// HistoryEdit is one edited row of a member's attendance history.
// The member name and status are fixed; only these fields are editable.
type HistoryEdit struct {
	Date    time.Time
	Meeting string
	Group   string
}

// SaveMemberHistoryInput carries an edited history for one member over [Start, End].
type SaveMemberHistoryInput struct {
	Session account.Session
	Name    string
	Group   string // filter the history was shown with; see schedule.IsAllGroups
	Start   time.Time
	End     time.Time
	Rows    []HistoryEdit
}

// SaveMemberHistoryDeps holds dependencies for SaveMemberHistory.
type SaveMemberHistoryDeps struct {
	Store  RecordStore
	Locker TableLocker
}

// SaveMemberHistoryResult reports the replacement.
type SaveMemberHistoryResult struct {
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`
}

// ExecuteSaveMemberHistory replaces the member's records in [Start, End] (within the
// group filter) with the edited rows. A row left out of Rows is an absence correction.
// PRE: Name set; Start <= End; every edit lies in [Start, End] and in the group filter
// POST: The member's records in range equal Rows with (date, meeting, group) duplicates collapsed
func ExecuteSaveMemberHistory(ctx context.Context, input SaveMemberHistoryInput, deps SaveMemberHistoryDeps) (SaveMemberHistoryResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return SaveMemberHistoryResult{}, attendance.ErrEmptyName
	}
	if input.Start.IsZero() || input.End.IsZero() {
		return SaveMemberHistoryResult{}, attendance.ErrMissingDate
	}
	start, end := schedule.Day(input.Start), schedule.Day(input.End)
	if end.Before(start) {
		return SaveMemberHistoryResult{}, fmt.Errorf("history range %s..%s is reversed: %w",
			schedule.FormatDate(start), schedule.FormatDate(end), schedule.ErrInvalidDate)
	}
	filter := strings.TrimSpace(input.Group)
	allGroups := schedule.IsAllGroups(filter)
	if err := input.Session.CheckGroup(filter); err != nil {
		return SaveMemberHistoryResult{}, err
	}

	add := make([]attendance.Record, 0, len(input.Rows))
	for _, e := range input.Rows {
		r := attendance.Record{
			Date:    schedule.Day(e.Date),
			Meeting: strings.TrimSpace(e.Meeting),
			Name:    name,
			Group:   strings.TrimSpace(e.Group),
			Status:  attendance.StatusPresent,
		}
		if !allGroups && r.Group == "" {
			r.Group = filter
		}
		if err := r.Validate(); err != nil {
			return SaveMemberHistoryResult{}, err
		}
		if !schedule.InRange(r.Date, start, end) || (!allGroups && r.Group != filter) {
			return SaveMemberHistoryResult{}, fmt.Errorf("%s %s/%s: %w", schedule.FormatDate(r.Date), r.Meeting, r.Group, attendance.ErrOutsideCell)
		}
		if err := input.Session.CheckGroup(r.Group); err != nil {
			return SaveMemberHistoryResult{}, fmt.Errorf("%s: %w", r.Group, err)
		}
		add = append(add, r)
	}

	match := func(r attendance.Record) bool {
		return r.Name == name && schedule.InRange(r.Date, start, end) && (allGroups || r.Group == filter)
	}

	var result SaveMemberHistoryResult
	err := withTableLock(ctx, deps.Locker, storage.TableAttendance, func() error {
		snap, err := deps.Store.ReadAll(ctx, storage.TableAttendance)
		if err != nil {
			return fmt.Errorf("read attendance: %w", err)
		}
		ledger := attendance.NewLedger(snap.Rows)
		result.Deleted, result.Inserted = ledger.ReplaceWhere(match, add)
		if err := deps.Store.ReplaceAll(ctx, storage.TableAttendance, ledger.Rows(), snap.Version); err != nil {
			return fmt.Errorf("write attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return SaveMemberHistoryResult{}, err
	}

	slog.Info("attendance_event", "event", "history_saved", "name", name, "group", filter,
		"start", schedule.FormatDate(start), "end", schedule.FormatDate(end),
		"deleted", result.Deleted, "inserted", result.Inserted, "by", input.Session.Login)
	return result, nil
}
