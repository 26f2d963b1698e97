package member_test

import (
	"errors"
	"strings"
	"testing"

	"hoejeong/internal/domain/member"
)

// TestMemberValidation tests validation of Member.
func TestMemberValidation(t *testing.T) {
	tests := []struct {
		name    string
		member  member.Member
		wantErr bool
	}{
		{
			name:    "valid member",
			member:  member.Member{Name: "홍길동", Sex: member.SexMale, Group: "청년부", FamilyID: "12"},
			wantErr: false,
		},
		{
			name:    "blank sex is allowed",
			member:  member.Member{Name: "홍길동", Group: "청년부"},
			wantErr: false,
		},
		{
			name:    "empty name",
			member:  member.Member{Name: "  ", Group: "청년부"},
			wantErr: true,
		},
		{
			name:    "empty group",
			member:  member.Member{Name: "홍길동"},
			wantErr: true,
		},
		{
			name:    "unknown sex",
			member:  member.Member{Name: "홍길동", Sex: "M", Group: "청년부"},
			wantErr: true,
		},
		{
			name:    "non-numeric family id",
			member:  member.Member{Name: "홍길동", Group: "청년부", FamilyID: "A-3"},
			wantErr: true,
		},
		{
			name:    "name too long",
			member:  member.Member{Name: strings.Repeat("가", 101), Group: "청년부"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.member.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestFromRow_Normalises checks boundary parsing of a sheet row.
func TestFromRow_Normalises(t *testing.T) {
	m, err := member.FromRow(map[string]string{
		member.ColName:      " 홍길동 ",
		member.ColBirthday:  "1990-05-02",
		member.ColLunarFlag: "음력",
		member.ColPhone:     "01012345678",
		member.ColFamilyID:  "12.0",
		member.ColGroup:     "청년부",
	})
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if m.Name != "홍길동" {
		t.Errorf("Name=%q, want 홍길동", m.Name)
	}
	if !m.Lunar {
		t.Error("Lunar=false, want true")
	}
	if m.FamilyID != "12" {
		t.Errorf("FamilyID=%q, want 12", m.FamilyID)
	}
	if n, ok := m.FamilyNumber(); !ok || n != 12 {
		t.Errorf("FamilyNumber()=%d,%v, want 12,true", n, ok)
	}
	if digits := strings.NewReplacer("-", "", " ", "").Replace(m.Phone); digits != "01012345678" {
		t.Errorf("Phone=%q, want national format of 01012345678", m.Phone)
	}
}

// TestFromRow_RejectsBlankIdentity verifies unusable rows are reported.
func TestFromRow_RejectsBlankIdentity(t *testing.T) {
	if _, err := member.FromRow(map[string]string{member.ColGroup: "청년부"}); !errors.Is(err, member.ErrEmptyName) {
		t.Errorf("err=%v, want ErrEmptyName", err)
	}
	if _, err := member.FromRow(map[string]string{member.ColName: "홍길동"}); !errors.Is(err, member.ErrEmptyGroup) {
		t.Errorf("err=%v, want ErrEmptyGroup", err)
	}
}

// TestNormalizePhone_KeepsInvalidInput verifies junk survives untouched.
func TestNormalizePhone_KeepsInvalidInput(t *testing.T) {
	if got := member.NormalizePhone(" 없음 "); got != "없음" {
		t.Errorf("NormalizePhone=%q, want 없음", got)
	}
	if got := member.NormalizePhone(""); got != "" {
		t.Errorf("NormalizePhone(\"\")=%q, want empty", got)
	}
}

// TestRow_RoundTripsLunarFlag checks the flag column written back to the sheet.
func TestRow_RoundTripsLunarFlag(t *testing.T) {
	m := member.Member{Name: "성춘향", Birthday: "1992-08-15", Lunar: true, Group: "2구역"}
	back, err := member.FromRow(m.Row())
	if err != nil {
		t.Fatalf("FromRow: %v", err)
	}
	if !back.Lunar || back.Birthday != m.Birthday {
		t.Errorf("round trip = %+v, want lunar birthday %s", back, m.Birthday)
	}
}

// TestGroups keeps first-seen order.
func TestGroups(t *testing.T) {
	got := member.Groups([]member.Member{
		{Name: "a", Group: "2구역"}, {Name: "b", Group: "1구역"}, {Name: "c", Group: "2구역"},
	})
	if len(got) != 2 || got[0] != "2구역" || got[1] != "1구역" {
		t.Errorf("Groups=%v, want [2구역 1구역]", got)
	}
}
