package account

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"hoejeong/internal/domain/schedule"
)

// Column keys of the users table.
const (
	ColLogin        = "login"
	ColPasswordHash = "password_hash"
	ColName         = "name"
	ColRole         = "role"
	ColGroups       = "groups"
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleLeader = "leader"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleLeader}

// MinPasswordLength is the shortest accepted new password.
const MinPasswordLength = 8

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// Domain errors
var (
	ErrEmptyLogin       = errors.New("login cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: admin, leader")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrWrongPassword    = errors.New("incorrect login or password")
	ErrForbidden        = errors.New("only an admin may do that")
	ErrForbiddenGroup   = errors.New("group is not assigned to this account")
	ErrLeaderNeedsGroup = errors.New("a leader must be assigned at least one group")
)

// Account is one row of the users table.
type Account struct {
	Login        string
	PasswordHash string
	Name         string
	Role         string
	Groups       []string // 담당소그룹, leaders only
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Login) == "" {
		return ErrEmptyLogin
	}
	if !isValidRole(a.Role) {
		return ErrInvalidRole
	}
	if a.Role == RoleLeader && len(a.Groups) == 0 {
		return ErrLeaderNeedsGroup
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is at least MinPasswordLength characters
// POST: PasswordHash is set to a bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len([]rune(plaintext)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), BcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored value.
// Rows imported from the old sheet hold the password in clear; those are
// compared in constant time and reported by NeedsRehash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) error {
	if a.PasswordHash == "" || plaintext == "" {
		return ErrWrongPassword
	}
	if a.NeedsRehash() {
		if subtle.ConstantTimeCompare([]byte(a.PasswordHash), []byte(plaintext)) != 1 {
			return ErrWrongPassword
		}
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// NeedsRehash reports whether the stored password is not a bcrypt hash.
func (a *Account) NeedsRehash() bool {
	_, err := bcrypt.Cost([]byte(a.PasswordHash))
	return err != nil
}

// IsAdmin returns true if the account has admin role.
// INVARIANT: Account fields are not mutated
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Session returns the explicit session value handed to application code.
func (a *Account) Session() Session {
	return Session{
		Login:  a.Login,
		Name:   a.Name,
		Role:   a.Role,
		Groups: append([]string(nil), a.Groups...),
	}
}

// ParseGroups splits the comma separated 담당소그룹 cell.
func ParseGroups(raw string) []string {
	var out []string
	for _, g := range strings.Split(raw, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// FromRow parses a users row. Unknown roles are treated as leader so a typo never grants admin.
func FromRow(row map[string]string) (Account, error) {
	a := Account{
		Login:        strings.TrimSpace(row[ColLogin]),
		PasswordHash: strings.TrimSpace(row[ColPasswordHash]),
		Name:         strings.TrimSpace(row[ColName]),
		Role:         strings.ToLower(strings.TrimSpace(row[ColRole])),
		Groups:       ParseGroups(row[ColGroups]),
	}
	if a.Login == "" {
		return Account{}, ErrEmptyLogin
	}
	if !isValidRole(a.Role) {
		a.Role = RoleLeader
	}
	return a, nil
}

// Row renders the account for storage.
func (a Account) Row() map[string]string {
	return map[string]string{
		ColLogin:        a.Login,
		ColPasswordHash: a.PasswordHash,
		ColName:         a.Name,
		ColRole:         a.Role,
		ColGroups:       strings.Join(a.Groups, ", "),
	}
}

// Session is the authenticated caller, passed explicitly into every
// orchestrator and projection.
type Session struct {
	Login  string
	Name   string
	Role   string
	Groups []string
}

// IsAdmin returns true for admin sessions.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanAccessGroup reports whether the session may read or write group.
// Only admins may act on the all-groups scope.
func (s Session) CanAccessGroup(group string) bool {
	if s.IsAdmin() {
		return true
	}
	if schedule.IsAllGroups(group) {
		return false
	}
	for _, g := range s.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// CheckGroup returns ErrForbiddenGroup when the session may not touch group.
func (s Session) CheckGroup(group string) error {
	if !s.CanAccessGroup(group) {
		return ErrForbiddenGroup
	}
	return nil
}

// VisibleGroups filters known groups down to those the session may see.
func (s Session) VisibleGroups(known []string) []string {
	out := make([]string, 0, len(known))
	for _, g := range known {
		if s.CanAccessGroup(g) {
			out = append(out, g)
		}
	}
	return out
}

// DefaultGroup is the scope a screen opens with: all groups for an admin,
// otherwise the first assigned group.
func (s Session) DefaultGroup() string {
	if s.IsAdmin() || len(s.Groups) == 0 {
		return schedule.AllGroups
	}
	return s.Groups[0]
}

func isValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
