package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/adapters/storage/lock"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/member"
)

var sunday = time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)

func seededReconcileStore() *memStore {
	s := newMemStore()
	s.seed(storage.TableMembers,
		memberRow("홍길동", "청년부"),
		memberRow("김철수", "청년부"),
		memberRow("이영희", "2청년"),
		memberRow("박민수", "중등부"),
		memberRow("김철수", "2청년"),
	)
	return s
}

func namesAt(rows []storage.Row, date, group string) map[string][]string {
	out := map[string][]string{}
	for _, r := range rows {
		if r["date"] == date && (group == "" || r["group"] == group) {
			out[r["name"]] = append(out[r["name"]], r["meeting"])
		}
	}
	return out
}

// TestExecuteReconcileAttendance_SundayScenario covers the worked example:
// one member present at both services, another at neither.
func TestExecuteReconcileAttendance_SundayScenario(t *testing.T) {
	store := seededReconcileStore()
	store.seed(storage.TableAttendance,
		attendanceRow("2026-01-04", "주일 1부", "김철수", "청년부"),
		attendanceRow("2025-12-28", "청년부", "김철수", "청년부"),
	)

	res, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "청년부",
		Meetings: []string{"주일 1부", "청년부"},
		Marks: []ReconcileMark{
			{Name: "홍길동", Present: map[string]bool{"주일 1부": true, "청년부": true}},
			{Name: "김철수", Present: map[string]bool{"주일 1부": false, "청년부": false}},
		},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Deleted != 1 || res.Inserted != 2 || !res.Written {
		t.Errorf("result = %+v, want 1 deleted, 2 inserted", res)
	}

	got := namesAt(store.tables[storage.TableAttendance], "2026-01-04", "")
	if len(got["홍길동"]) != 2 {
		t.Errorf("홍길동 rows = %v, want 2", got["홍길동"])
	}
	if len(got["김철수"]) != 0 {
		t.Errorf("김철수 rows = %v, want none", got["김철수"])
	}
	if len(namesAt(store.tables[storage.TableAttendance], "2025-12-28", "")["김철수"]) != 1 {
		t.Error("previous week's record was touched")
	}
}

func TestExecuteReconcileAttendance_Idempotent(t *testing.T) {
	store := seededReconcileStore()
	input := ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "청년부",
		Meetings: []string{"주일 1부", "청년부"},
		Marks: []ReconcileMark{
			{Name: "홍길동", Present: map[string]bool{"주일 1부": true, "청년부": true}},
		},
	}
	deps := ReconcileAttendanceDeps{Store: store, Locker: lock.NewLocal(time.Second)}

	if _, err := ExecuteReconcileAttendance(context.Background(), input, deps); err != nil {
		t.Fatalf("first: %v", err)
	}
	first := append([]storage.Row{}, store.tables[storage.TableAttendance]...)
	res, err := ExecuteReconcileAttendance(context.Background(), input, deps)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if res.Deleted != 2 || res.Inserted != 2 {
		t.Errorf("second result = %+v", res)
	}
	if len(store.tables[storage.TableAttendance]) != len(first) {
		t.Errorf("rows = %d after repeat, want %d", len(store.tables[storage.TableAttendance]), len(first))
	}
}

// TestExecuteReconcileAttendance_PreservesOutsideRows verifies rows outside the cell,
// including ones with unparseable dates, survive verbatim and in order.
func TestExecuteReconcileAttendance_PreservesOutsideRows(t *testing.T) {
	store := seededReconcileStore()
	odd := storage.Row{"date": "지난주", "meeting": "주일 1부", "name": "홍길동", "group": "청년부", "status": "출석"}
	otherGroup := attendanceRow("2026-01-04", "주일 1부", "이영희", "2청년")
	otherMeeting := storage.Row{"date": "2026-01-04 00:00:00", "meeting": "주일 2부", "name": "홍길동", "group": "청년부", "status": "출석"}
	store.seed(storage.TableAttendance, odd, otherGroup, otherMeeting)

	_, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "청년부",
		Meetings: []string{"주일 1부"},
		Marks:    []ReconcileMark{{Name: "홍길동", Present: map[string]bool{"주일 1부": true}}},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := store.tables[storage.TableAttendance]
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0]["date"] != "지난주" || rows[1]["name"] != "이영희" || rows[2]["date"] != "2026-01-04 00:00:00" {
		t.Errorf("retained rows changed: %v", rows[:3])
	}
}

// TestExecuteReconcileAttendance_AllGroupsScope verifies only represented groups are overwritten.
func TestExecuteReconcileAttendance_AllGroupsScope(t *testing.T) {
	store := seededReconcileStore()
	store.seed(storage.TableAttendance,
		attendanceRow("2026-01-04", "주일 1부", "홍길동", "청년부"),
		attendanceRow("2026-01-04", "주일 1부", "박민수", "중등부"),
	)

	res, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "전체",
		Meetings: []string{"주일 1부"},
		Marks: []ReconcileMark{
			{Name: "홍길동", Present: map[string]bool{"주일 1부": false}},
			{Name: "이영희", Present: map[string]bool{"주일 1부": true}},
		},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Groups) != 2 {
		t.Errorf("groups = %v, want 청년부 and 2청년", res.Groups)
	}
	got := namesAt(store.tables[storage.TableAttendance], "2026-01-04", "")
	if len(got["홍길동"]) != 0 {
		t.Errorf("unchecked 홍길동 still present: %v", got)
	}
	if len(got["이영희"]) != 1 {
		t.Errorf("이영희 not recorded: %v", got)
	}
	if len(got["박민수"]) != 1 {
		t.Errorf("unrepresented group 중등부 was cleared: %v", got)
	}
}

// TestExecuteReconcileAttendance_ReplacesRowsFiledUnderScopeLabel covers older
// sheets that stored the scope label as the group on all-groups saves.
func TestExecuteReconcileAttendance_ReplacesRowsFiledUnderScopeLabel(t *testing.T) {
	store := seededReconcileStore()
	store.seed(storage.TableAttendance,
		attendanceRow("2026-01-04", "주일 1부", "홍길동", "전체 보기"),
		attendanceRow("2026-01-04", "주일 1부", "박민수", "전체 보기"),
	)

	_, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "전체 보기",
		Meetings: []string{"주일 1부"},
		Marks: []ReconcileMark{
			{Name: "홍길동", Present: map[string]bool{"주일 1부": true}},
		},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := store.tables[storage.TableAttendance]
	var hong []string
	for _, r := range rows {
		if r["date"] == "2026-01-04" && r["meeting"] == "주일 1부" && r["name"] == "홍길동" {
			hong = append(hong, r["group"])
		}
	}
	if len(hong) != 1 || hong[0] != "청년부" {
		t.Errorf("홍길동 rows by group = %v, want exactly [청년부]", hong)
	}
	if got := namesAt(rows, "2026-01-04", "전체 보기"); len(got["박민수"]) != 1 {
		t.Errorf("unmarked member's row under the scope label was dropped: %v", got)
	}
}

func TestExecuteReconcileAttendance_AllGroupsNoMarksIsNoop(t *testing.T) {
	store := seededReconcileStore()
	store.seed(storage.TableAttendance, attendanceRow("2026-01-04", "주일 1부", "홍길동", "청년부"))
	res, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "all",
		Meetings: []string{"주일 1부"},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written || store.writes[storage.TableAttendance] != 0 {
		t.Errorf("empty all-groups submission wrote: %+v", res)
	}
}

func TestExecuteReconcileAttendance_EmptyColumnsIsNoop(t *testing.T) {
	store := seededReconcileStore()
	res, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session: adminSession,
		Date:    sunday,
		Group:   "청년부",
		Marks:   []ReconcileMark{{Name: "홍길동"}},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Written || store.writes[storage.TableAttendance] != 0 {
		t.Errorf("empty column set wrote: %+v", res)
	}
}

func TestExecuteReconcileAttendance_Rejects(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input ReconcileAttendanceInput
		want  error
	}{
		{
			name:  "missing date",
			input: ReconcileAttendanceInput{Session: adminSession, Group: "청년부", Meetings: []string{"청년부"}},
			want:  attendance.ErrMissingDate,
		},
		{
			name:  "meeting not held on monday",
			input: ReconcileAttendanceInput{Session: adminSession, Date: monday, Group: "청년부", Meetings: []string{"새벽기도"}},
			want:  attendance.ErrMeetingNotScheduled,
		},
		{
			name:  "youth service for a young adult group",
			input: ReconcileAttendanceInput{Session: adminSession, Date: sunday, Group: "청년부", Meetings: []string{"중고등부"}},
			want:  attendance.ErrMeetingNotScheduled,
		},
		{
			name: "unknown member",
			input: ReconcileAttendanceInput{Session: adminSession, Date: sunday, Group: "청년부", Meetings: []string{"청년부"},
				Marks: []ReconcileMark{{Name: "이영희", Present: map[string]bool{"청년부": true}}}},
			want: member.ErrUnknownMember,
		},
		{
			name: "ambiguous member across groups",
			input: ReconcileAttendanceInput{Session: adminSession, Date: sunday, Group: "전체", Meetings: []string{"주일 1부"},
				Marks: []ReconcileMark{{Name: "김철수", Present: map[string]bool{"주일 1부": true}}}},
			want: member.ErrAmbiguousMember,
		},
		{
			name:  "leader outside their group",
			input: ReconcileAttendanceInput{Session: leaderSession("2청년"), Date: sunday, Group: "청년부", Meetings: []string{"청년부"}},
			want:  account.ErrForbiddenGroup,
		},
		{
			name:  "leader on all groups",
			input: ReconcileAttendanceInput{Session: leaderSession("청년부"), Date: sunday, Group: "전체", Meetings: []string{"주일 1부"}},
			want:  account.ErrForbiddenGroup,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededReconcileStore()
			_, err := ExecuteReconcileAttendance(context.Background(), tt.input, ReconcileAttendanceDeps{Store: store})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if store.writes[storage.TableAttendance] != 0 {
				t.Error("rejected submission wrote to the store")
			}
		})
	}
}

// TestExecuteReconcileAttendance_AmbiguityResolvedByGroup verifies an explicit group picks the member.
func TestExecuteReconcileAttendance_AmbiguityResolvedByGroup(t *testing.T) {
	store := seededReconcileStore()
	_, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "전체",
		Meetings: []string{"주일 1부"},
		Marks:    []ReconcileMark{{Name: "김철수", Group: "2청년", Present: map[string]bool{"주일 1부": true}}},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rows := store.tables[storage.TableAttendance]
	if len(rows) != 1 || rows[0]["group"] != "2청년" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExecuteReconcileAttendance_ReadFailureAborts(t *testing.T) {
	store := seededReconcileStore()
	store.seed(storage.TableAttendance, attendanceRow("2026-01-04", "청년부", "김철수", "청년부"))
	store.readErr[storage.TableAttendance] = storage.Unavailable("read", storage.TableAttendance, errors.New("quota"))

	_, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  adminSession,
		Date:     sunday,
		Group:    "청년부",
		Meetings: []string{"청년부"},
		Marks:    []ReconcileMark{{Name: "홍길동", Present: map[string]bool{"청년부": true}}},
	}, ReconcileAttendanceDeps{Store: store})
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	if store.writes[storage.TableAttendance] != 0 || len(store.tables[storage.TableAttendance]) != 1 {
		t.Error("failed read still wrote")
	}
}

func TestExecuteReconcileAttendance_LeaderInOwnGroup(t *testing.T) {
	store := seededReconcileStore()
	res, err := ExecuteReconcileAttendance(context.Background(), ReconcileAttendanceInput{
		Session:  leaderSession("청년부"),
		Date:     sunday,
		Group:    "청년부",
		Meetings: []string{"청년부"},
		Marks:    []ReconcileMark{{Name: "홍길동", Present: map[string]bool{"청년부": true, "주일 1부": true}}},
	}, ReconcileAttendanceDeps{Store: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("inserted = %d, want 1 (columns outside the submission are ignored)", res.Inserted)
	}
}
