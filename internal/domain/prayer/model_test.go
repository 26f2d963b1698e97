package prayer_test

import (
	"strings"
	"testing"
	"time"

	"hoejeong/internal/domain/prayer"
)

// TestEntry_Validate tests validation of Entry.
func TestEntry_Validate(t *testing.T) {
	day := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		entry   prayer.Entry
		wantErr error
	}{
		{"valid", prayer.Entry{Date: day, Name: "홍길동", Group: "청년부", Content: "취업"}, nil},
		{"blank content", prayer.Entry{Date: day, Name: "홍길동", Group: "청년부", Content: "  "}, prayer.ErrEmptyContent},
		{"long content", prayer.Entry{Date: day, Name: "홍길동", Group: "청년부", Content: strings.Repeat("a", 2001)}, prayer.ErrContentTooLong},
		{"no date", prayer.Entry{Name: "홍길동", Group: "청년부", Content: "취업"}, prayer.ErrMissingDate},
		{"no name", prayer.Entry{Date: day, Group: "청년부", Content: "취업"}, prayer.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.entry.Validate(); err != tt.wantErr {
				t.Errorf("Validate()=%v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestFromRow_SkipsBadDate verifies malformed rows are rejected at the boundary.
func TestFromRow_SkipsBadDate(t *testing.T) {
	_, err := prayer.FromRow(map[string]string{
		prayer.ColDate: "언젠가", prayer.ColName: "홍길동", prayer.ColGroup: "청년부", prayer.ColContent: "취업",
	})
	if err == nil {
		t.Error("FromRow succeeded, want error")
	}
}
