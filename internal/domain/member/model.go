package member

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

// Column keys of the members table.
const (
	ColName      = "name"
	ColSex       = "sex"
	ColBirthday  = "birthday"
	ColLunarFlag = "lunar_flag"
	ColPhone     = "phone"
	ColAddress   = "address"
	ColFamilyID  = "family_id"
	ColGroup     = "group"
	ColNote      = "note"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Sex values as entered in the roster.
const (
	SexMale   = "남"
	SexFemale = "여"
)

// PhoneRegion is the default region for parsing local phone numbers.
const PhoneRegion = "KR"

// Domain errors
var (
	ErrEmptyName       = errors.New("member name cannot be empty")
	ErrEmptyGroup      = errors.New("member group cannot be empty")
	ErrDuplicateMember = errors.New("member name must be unique within a group")
	ErrUnknownMember   = errors.New("member is not on the roster")
	ErrAmbiguousMember = errors.New("member name matches more than one group")
	ErrInvalidField    = errors.New("member field is invalid")
)

var validate = validator.New()

// Member is one roster entry. Name is unique within a group, not globally.
type Member struct {
	Name     string `json:"name" validate:"required,max=100"`
	Sex      string `json:"sex" validate:"omitempty,oneof=남 여"`
	// Birthday is free text; see ParseBirthday.
	Birthday string `json:"birthday"`
	Lunar    bool   `json:"lunar"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	FamilyID string `json:"family_id" validate:"omitempty,numeric"`
	Group    string `json:"group" validate:"required"`
	Note     string `json:"note"`
}

// Key identifies a member within the roster.
type Key struct {
	Group string
	Name  string
}

// Key returns the (group, name) identity.
func (m Member) Key() Key {
	return Key{Group: m.Group, Name: m.Name}
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name and Group must not be blank, FamilyID is numeric when present
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(m.Group) == "" {
		return ErrEmptyGroup
	}
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("member %s: field %s failed %q: %w", m.Name, verrs[0].Field(), verrs[0].Tag(), ErrInvalidField)
		}
		return fmt.Errorf("member %s: %w: %v", m.Name, ErrInvalidField, err)
	}
	return nil
}

// FamilyNumber returns the numeric family grouping key.
func (m Member) FamilyNumber() (int, bool) {
	if m.FamilyID == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m.FamilyID)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FromRow parses a roster row at the storage boundary.
// Blank name or group rows are rejected; other fields are normalised but kept.
// PRE: row is keyed by column key
// POST: Returns ErrEmptyName or ErrEmptyGroup for unusable rows
func FromRow(row map[string]string) (Member, error) {
	m := Member{
		Name:     strings.TrimSpace(row[ColName]),
		Sex:      strings.TrimSpace(row[ColSex]),
		Birthday: strings.TrimSpace(row[ColBirthday]),
		Phone:    NormalizePhone(row[ColPhone]),
		Address:  strings.TrimSpace(row[ColAddress]),
		FamilyID: NormalizeFamilyID(row[ColFamilyID]),
		Group:    strings.TrimSpace(row[ColGroup]),
		Note:     strings.TrimSpace(row[ColNote]),
	}
	m.Lunar = IsLunar(row[ColLunarFlag], m.Birthday)
	if m.Name == "" {
		return Member{}, ErrEmptyName
	}
	if m.Group == "" {
		return Member{}, ErrEmptyGroup
	}
	return m, nil
}

// Row renders the member for storage.
func (m Member) Row() map[string]string {
	lunar := ""
	if m.Lunar {
		lunar = "음력"
	}
	return map[string]string{
		ColName:      m.Name,
		ColSex:       m.Sex,
		ColBirthday:  m.Birthday,
		ColLunarFlag: lunar,
		ColPhone:     m.Phone,
		ColAddress:   m.Address,
		ColFamilyID:  m.FamilyID,
		ColGroup:     m.Group,
		ColNote:      m.Note,
	}
}

// NormalizeFamilyID strips the float suffix spreadsheets add to numeric cells ("12.0" → "12").
// Non-numeric values are returned trimmed and left for Validate to reject.
func NormalizeFamilyID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return s
}

// NormalizePhone formats a valid Korean number in national format.
// Invalid or foreign-looking input is returned trimmed, as typed.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	num, err := libphonenumber.Parse(s, PhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return s
	}
	return libphonenumber.Format(num, libphonenumber.NATIONAL)
}

// Groups returns the distinct group names in roster order.
func Groups(members []Member) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range members {
		if !seen[m.Group] {
			seen[m.Group] = true
			out = append(out, m.Group)
		}
	}
	return out
}
