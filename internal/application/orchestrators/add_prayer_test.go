package orchestrators

import (
	"context"
	"errors"
	"testing"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/member"
	"hoejeong/internal/domain/prayer"
	"hoejeong/internal/domain/report"
)

func TestExecuteAddPrayer_Appends(t *testing.T) {
	store := newMemStore()
	store.seed(storage.TableMembers, memberRow("홍길동", "청년부"))
	store.seed(storage.TablePrayer, storage.Row{"date": "2025-12-01", "name": "홍길동", "group": "청년부", "content": "건강", "author": "리더"})

	e, err := ExecuteAddPrayer(context.Background(), AddPrayerInput{
		Session: leaderSession("청년부"),
		Name:    "홍길동",
		Group:   "청년부",
		Content: "  취업 준비  ",
	}, AddPrayerDeps{Store: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Author != "리더" || e.Content != "취업 준비" {
		t.Errorf("entry = %+v", e)
	}
	rows := store.tables[storage.TablePrayer]
	if len(rows) != 2 || rows[1]["date"] != "2026-01-04" || rows[1]["content"] != "취업 준비" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExecuteAddPrayer_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input AddPrayerInput
		want  error
	}{
		{"blank content", AddPrayerInput{Session: adminSession, Name: "홍길동", Group: "청년부", Content: "  "}, prayer.ErrEmptyContent},
		{"not on roster", AddPrayerInput{Session: adminSession, Name: "누구", Group: "청년부", Content: "기도"}, member.ErrUnknownMember},
		{"foreign group", AddPrayerInput{Session: leaderSession("2청년"), Name: "홍길동", Group: "청년부", Content: "기도"}, account.ErrForbiddenGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.seed(storage.TableMembers, memberRow("홍길동", "청년부"))
			_, err := ExecuteAddPrayer(context.Background(), tt.input, AddPrayerDeps{Store: store, Now: fixedNow})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if store.writes[storage.TablePrayer] != 0 {
				t.Error("rejected prayer was written")
			}
		})
	}
}

func TestExecuteSubmitReport(t *testing.T) {
	store := newMemStore()
	r, err := ExecuteSubmitReport(context.Background(), SubmitReportInput{
		Session: leaderSession("청년부"),
		Date:    day(2026, 1, 3),
		Group:   "청년부",
		Content: "새신자 2명 등록",
	}, SubmitReportDeps{Store: store, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Author != "리더" {
		t.Errorf("author = %q", r.Author)
	}
	rows := store.tables[storage.TableReport]
	if len(rows) != 1 || rows[0]["date"] != "2026-01-03" || rows[0]["group"] != "청년부" {
		t.Errorf("rows = %v", rows)
	}

	if _, err := ExecuteSubmitReport(context.Background(), SubmitReportInput{
		Session: leaderSession("청년부"), Group: "2청년", Content: "x",
	}, SubmitReportDeps{Store: store, Now: fixedNow}); !errors.Is(err, account.ErrForbiddenGroup) {
		t.Errorf("foreign group err = %v", err)
	}
	if _, err := ExecuteSubmitReport(context.Background(), SubmitReportInput{
		Session: adminSession, Group: "청년부",
	}, SubmitReportDeps{Store: store, Now: fixedNow}); !errors.Is(err, report.ErrEmptyContent) {
		t.Errorf("blank content err = %v", err)
	}
}

func TestAppendRow_WriteFailure(t *testing.T) {
	store := newMemStore()
	store.seed(storage.TableMembers, memberRow("홍길동", "청년부"))
	store.writeErr = storage.Unavailable("write", storage.TablePrayer, errors.New("rate limited"))
	_, err := ExecuteAddPrayer(context.Background(), AddPrayerInput{
		Session: adminSession, Name: "홍길동", Group: "청년부", Content: "기도",
	}, AddPrayerDeps{Store: store, Now: fixedNow})
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
