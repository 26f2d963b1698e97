package notice_test

import (
	"strings"
	"testing"
	"time"

	"hoejeong/internal/domain/notice"
)

// TestNotice_Validate tests validation of Notice.
func TestNotice_Validate(t *testing.T) {
	tests := []struct {
		name    string
		notice  notice.Notice
		wantErr error
	}{
		{"valid", notice.Notice{ID: "n1", Title: "성탄 예배", Content: "**12/25** 오전 11시"}, nil},
		{"missing id", notice.Notice{Title: "t", Content: "c"}, notice.ErrMissingID},
		{"empty title", notice.Notice{ID: "n1", Title: " ", Content: "c"}, notice.ErrEmptyTitle},
		{"long title", notice.Notice{ID: "n1", Title: strings.Repeat("가", 201), Content: "c"}, notice.ErrTitleTooLong},
		{"empty content", notice.Notice{ID: "n1", Title: "t", Content: "\n"}, notice.ErrEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.notice.Validate(); err != tt.wantErr {
				t.Errorf("Validate()=%v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNotice_PinUnpin covers the pin state machine.
func TestNotice_PinUnpin(t *testing.T) {
	n := notice.Notice{ID: "n1", Title: "t", Content: "c"}
	if err := n.Unpin(); err != notice.ErrNotPinned {
		t.Errorf("Unpin()=%v, want ErrNotPinned", err)
	}
	if err := n.Pin(); err != nil {
		t.Fatalf("Pin()=%v", err)
	}
	if err := n.Pin(); err != notice.ErrAlreadyPinned {
		t.Errorf("second Pin()=%v, want ErrAlreadyPinned", err)
	}
}

// TestNotice_RowRoundTrip checks the stored form.
func TestNotice_RowRoundTrip(t *testing.T) {
	n := notice.Notice{ID: "n1", Date: time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC), Title: "t", Content: "c", Author: "관리자", Pinned: true}
	back, err := notice.FromRow(n.Row())
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if back != n {
		t.Errorf("round trip = %+v, want %+v", back, n)
	}
}
