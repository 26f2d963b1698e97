package schedule_test

import (
	"reflect"
	"testing"
	"time"

	"hoejeong/internal/domain/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestWeekRange_BoundsEveryDay checks the Sunday..Saturday invariant across a full year.
func TestWeekRange_BoundsEveryDay(t *testing.T) {
	d := date(2025, 12, 1)
	for i := 0; i < 400; i++ {
		start, end := schedule.WeekRange(d)
		if start.Weekday() != time.Sunday {
			t.Fatalf("WeekRange(%s) start=%s weekday=%s, want Sunday", d.Format("2006-01-02"), start.Format("2006-01-02"), start.Weekday())
		}
		if end.Weekday() != time.Saturday {
			t.Fatalf("WeekRange(%s) end weekday=%s, want Saturday", d.Format("2006-01-02"), end.Weekday())
		}
		if end.Sub(start) != 6*24*time.Hour {
			t.Fatalf("WeekRange(%s) span=%v, want 6 days", d.Format("2006-01-02"), end.Sub(start))
		}
		if d.Before(start) || d.After(end) {
			t.Fatalf("WeekRange(%s) = [%s, %s], date outside range", d.Format("2006-01-02"), start.Format("2006-01-02"), end.Format("2006-01-02"))
		}
		d = d.AddDate(0, 0, 1)
	}
}

// TestWeekRange_Examples pins a few anchors.
func TestWeekRange_Examples(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		wantStart time.Time
	}{
		{"sunday anchors itself", date(2026, 1, 4), date(2026, 1, 4)},
		{"saturday closes the week", date(2026, 1, 10), date(2026, 1, 4)},
		{"wednesday", date(2026, 1, 7), date(2026, 1, 4)},
		{"crosses year", date(2026, 1, 1), date(2025, 12, 28)},
		{"time of day ignored", time.Date(2026, 1, 5, 23, 30, 0, 0, time.UTC), date(2026, 1, 4)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := schedule.WeekRange(tt.anchor)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start=%s, want %s", start.Format("2006-01-02"), tt.wantStart.Format("2006-01-02"))
			}
			if !end.Equal(tt.wantStart.AddDate(0, 0, 6)) {
				t.Errorf("end=%s, want %s", end.Format("2006-01-02"), tt.wantStart.AddDate(0, 0, 6).Format("2006-01-02"))
			}
		})
	}
}

// TestWeekdayLabel_MondayFirst verifies the Monday-indexed label table.
func TestWeekdayLabel_MondayFirst(t *testing.T) {
	want := []string{"월", "화", "수", "목", "금", "토", "일"}
	monday := date(2026, 1, 5)
	for i, w := range want {
		d := monday.AddDate(0, 0, i)
		if got := schedule.WeekdayLabel(d); got != w {
			t.Errorf("WeekdayLabel(%s)=%q, want %q", d.Format("2006-01-02"), got, w)
		}
		if got := schedule.WeekdayIndex(d); got != i {
			t.Errorf("WeekdayIndex(%s)=%d, want %d", d.Format("2006-01-02"), got, i)
		}
	}
}

// TestMeetingsFor covers weekday lookups and the Sunday category narrowing.
func TestMeetingsFor(t *testing.T) {
	tests := []struct {
		name    string
		weekday int
		group   string
		want    []string
	}{
		{"monday has nothing", 0, "1구역", []string{}},
		{"wednesday", 2, "1구역", []string{schedule.DawnPrayer, schedule.Wednesday}},
		{"friday", 4, "청년부", []string{schedule.DawnPrayer, schedule.FridayVigil}},
		{"sunday adult", 6, "1구역", []string{schedule.SundayFirst, schedule.SundaySecond, schedule.SundayAfternoon, schedule.SmallGroup}},
		{"sunday young adult", 6, "청년부", []string{schedule.SundayFirst, schedule.YoungAdult}},
		{"sunday youth", 6, "중고등부 1반", []string{schedule.SundayFirst, schedule.Youth}},
		{"sunday children", 6, "유년부", []string{schedule.SundaySchool}},
		{"out of range", 9, "1구역", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schedule.MeetingsFor(tt.weekday, tt.group)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MeetingsFor(%d, %q)=%v, want %v", tt.weekday, tt.group, got, tt.want)
			}
		})
	}
}

// TestMeetingsFor_SundayAllGroupsIsCanonicalUnion checks the "all" scope on Sunday.
func TestMeetingsFor_SundayAllGroupsIsCanonicalUnion(t *testing.T) {
	got := schedule.MeetingsFor(schedule.SundayIndex, "전체 보기")
	want := []string{
		schedule.SundayFirst, schedule.SundaySecond, schedule.SundayAfternoon,
		schedule.YoungAdult, schedule.Youth, schedule.SundaySchool, schedule.SmallGroup,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MeetingsFor(sunday, all)=%v, want %v", got, want)
	}
}

// TestMeetingsFor_ReturnsCopy guards the static schedule against caller mutation.
func TestMeetingsFor_ReturnsCopy(t *testing.T) {
	got := schedule.MeetingsFor(2, "1구역")
	got[0] = "changed"
	if again := schedule.MeetingsFor(2, "1구역"); again[0] != schedule.DawnPrayer {
		t.Errorf("schedule mutated through returned slice: %v", again)
	}
}

// TestParseDate accepts the layouts found in the sheet and rejects junk.
func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-01-04", date(2026, 1, 4), false},
		{"2026-01-04 00:00:00", date(2026, 1, 4), false},
		{"2026.1.4", date(2026, 1, 4), false},
		{" 2026/01/04 ", date(2026, 1, 4), false},
		{"", time.Time{}, true},
		{"yesterday", time.Time{}, true},
		{"2026-13-01", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := schedule.ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDate(%q) err=%v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q)=%s, want %s", tt.in, got, tt.want)
		}
	}
}

// TestIsAllGroups recognises every spelling of the all-groups scope.
func TestIsAllGroups(t *testing.T) {
	for _, s := range []string{"", "전체", "전체 보기", "전체 합계"} {
		if !schedule.IsAllGroups(s) {
			t.Errorf("IsAllGroups(%q)=false, want true", s)
		}
	}
	if schedule.IsAllGroups("청년부") {
		t.Error("IsAllGroups(청년부)=true, want false")
	}
}
