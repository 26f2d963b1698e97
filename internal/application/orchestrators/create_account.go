package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
)

// SaveAccountInput carries input for the save account orchestrator.
// A blank Password keeps the stored one when the login already exists.
type SaveAccountInput struct {
	Session  account.Session
	Login    string
	Password string
	Name     string
	Role     string
	Groups   []string
}

// SaveAccountDeps holds dependencies for SaveAccount.
type SaveAccountDeps struct {
	Store  RecordStore
	Locker TableLocker
}

// ExecuteSaveAccount creates or updates a user, matched by login.
// PRE: session is admin; a new login carries a password of MinPasswordLength or more
// POST: users holds exactly one row for Login
func ExecuteSaveAccount(ctx context.Context, input SaveAccountInput, deps SaveAccountDeps) (account.Account, error) {
	if !input.Session.IsAdmin() {
		return account.Account{}, account.ErrForbidden
	}
	acct := account.Account{
		Login: strings.TrimSpace(input.Login),
		Name:  strings.TrimSpace(input.Name),
		Role:  strings.ToLower(strings.TrimSpace(input.Role)),
	}
	for _, g := range input.Groups {
		if g = strings.TrimSpace(g); g != "" {
			acct.Groups = append(acct.Groups, g)
		}
	}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}

	created := false
	err := withTableLock(ctx, deps.Locker, storage.TableUsers, func() error {
		snap, err := deps.Store.ReadAll(ctx, storage.TableUsers)
		if err != nil {
			return fmt.Errorf("read users: %w", err)
		}
		existing, idx, found := findAccount(snap.Rows, acct.Login)
		if input.Password != "" {
			if err := acct.SetPassword(input.Password); err != nil {
				return err
			}
		} else if found {
			acct.PasswordHash = existing.PasswordHash
		} else {
			return account.ErrEmptyPassword
		}

		rows := snap.Rows
		if found {
			rows[idx] = acct.Row()
		} else {
			rows = append(rows, acct.Row())
			created = true
		}
		if err := deps.Store.ReplaceAll(ctx, storage.TableUsers, rows, snap.Version); err != nil {
			return fmt.Errorf("write users: %w", err)
		}
		return nil
	})
	if err != nil {
		return account.Account{}, err
	}

	event := "account_updated"
	if created {
		event = "account_created"
	}
	slog.Info("auth_event", "event", event, "login", acct.Login, "role", acct.Role, "by", input.Session.Login)
	return acct, nil
}

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Login    string
	Password string
	Name     string
}

// ErrSeedSkipped reports that users already has accounts.
var ErrSeedSkipped = errors.New("users table is not empty")

// ExecuteSeedAdmin creates the first admin when the users table has no accounts.
// PRE: Login and Password set
// POST: Returns ErrSeedSkipped and writes nothing when any account exists
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SaveAccountDeps) (account.Account, error) {
	name := input.Name
	if name == "" {
		name = "관리자"
	}
	acct := account.Account{Login: strings.TrimSpace(input.Login), Name: name, Role: account.RoleAdmin}
	if err := acct.Validate(); err != nil {
		return account.Account{}, err
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return account.Account{}, err
	}

	err := withTableLock(ctx, deps.Locker, storage.TableUsers, func() error {
		snap, err := deps.Store.ReadAll(ctx, storage.TableUsers)
		if err != nil {
			return fmt.Errorf("read users: %w", err)
		}
		for _, row := range snap.Rows {
			if _, err := account.FromRow(row); err == nil {
				return ErrSeedSkipped
			}
		}
		return deps.Store.ReplaceAll(ctx, storage.TableUsers, append(snap.Rows, acct.Row()), snap.Version)
	})
	if err != nil {
		return account.Account{}, err
	}

	slog.Info("auth_event", "event", "admin_seeded", "login", acct.Login)
	return acct, nil
}
