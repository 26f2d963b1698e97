package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
)

// AuthenticateInput carries input for the authenticate orchestrator.
type AuthenticateInput struct {
	Login    string
	Password string
}

// AuthenticateDeps holds dependencies for Authenticate.
type AuthenticateDeps struct {
	Store  RecordStore
	Locker TableLocker
}

// ExecuteAuthenticate checks credentials against the users table and returns the session.
// A password still stored in clear is upgraded to bcrypt on a successful login.
// PRE: none
// POST: Returns account.ErrWrongPassword for an unknown login or a wrong password
func ExecuteAuthenticate(ctx context.Context, input AuthenticateInput, deps AuthenticateDeps) (account.Session, error) {
	login := strings.TrimSpace(input.Login)
	if login == "" || input.Password == "" {
		return account.Session{}, account.ErrWrongPassword
	}

	snap, err := deps.Store.ReadAll(ctx, storage.TableUsers)
	if err != nil {
		return account.Session{}, err
	}
	acct, idx, found := findAccount(snap.Rows, login)
	if !found {
		slog.Info("auth_event", "event", "login_failed", "login", login, "reason", "not_found")
		return account.Session{}, account.ErrWrongPassword
	}
	if err := acct.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "login", login, "reason", "wrong_password")
		return account.Session{}, err
	}

	if acct.NeedsRehash() {
		upgradePassword(ctx, deps, acct, idx, input.Password, snap)
	}

	slog.Debug("auth_event", "event", "login_success", "login", login, "role", acct.Role)
	return acct.Session(), nil
}

// upgradePassword replaces a clear-text password with its bcrypt hash.
// Failures are logged; the login itself already succeeded.
func upgradePassword(ctx context.Context, deps AuthenticateDeps, acct account.Account, idx int, password string, snap storage.Snapshot) {
	if err := acct.SetPassword(password); err != nil {
		slog.Warn("auth_event", "event", "rehash_skipped", "login", acct.Login, "error", err)
		return
	}
	err := withTableLock(ctx, deps.Locker, storage.TableUsers, func() error {
		rows := snap.Rows
		rows[idx] = acct.Row()
		return deps.Store.ReplaceAll(ctx, storage.TableUsers, rows, snap.Version)
	})
	if err != nil {
		slog.Warn("auth_event", "event", "rehash_failed", "login", acct.Login, "error", err)
		return
	}
	slog.Info("auth_event", "event", "password_rehashed", "login", acct.Login)
}

// findAccount returns the first users row whose login matches.
func findAccount(rows []storage.Row, login string) (account.Account, int, bool) {
	for i, row := range rows {
		a, err := account.FromRow(row)
		if err != nil {
			continue
		}
		if a.Login == login {
			return a, i, true
		}
	}
	return account.Account{}, -1, false
}
