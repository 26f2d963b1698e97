package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"hoejeong/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// Realm is sent in the Basic challenge.
const Realm = "hoejeong"

// DefaultCredentialTTL bounds how long a verified login is trusted without
// re-checking the users table.
const DefaultCredentialTTL = 5 * time.Minute

// AuthenticateFunc verifies a login and password against the users table.
type AuthenticateFunc func(ctx context.Context, login, password string) (account.Session, error)

// Authenticator resolves HTTP Basic credentials to a session. Verified
// credentials are cached so bcrypt runs once per TTL, not once per request.
type Authenticator struct {
	verify AuthenticateFunc
	cache  *expirable.LRU[string, account.Session]
}

// NewAuthenticator wraps verify with a credential cache.
// PRE: verify is non-nil
// POST: ttl <= 0 selects DefaultCredentialTTL
func NewAuthenticator(verify AuthenticateFunc, size int, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	if size <= 0 {
		size = 256
	}
	return &Authenticator{verify: verify, cache: expirable.NewLRU[string, account.Session](size, nil, ttl)}
}

// credentialKey hashes the pair so plaintext passwords are never held as map keys.
func credentialKey(login, password string) string {
	sum := sha256.Sum256([]byte(login + "\x00" + password))
	return hex.EncodeToString(sum[:])
}

// Authenticate returns the session for a login and password.
func (a *Authenticator) Authenticate(ctx context.Context, login, password string) (account.Session, error) {
	key := credentialKey(login, password)
	if s, ok := a.cache.Get(key); ok {
		return s, nil
	}
	s, err := a.verify(ctx, login, password)
	if err != nil {
		return account.Session{}, err
	}
	a.cache.Add(key, s)
	return s, nil
}

// Forget drops every cached credential. Call it after any users table write.
func (a *Authenticator) Forget() {
	a.cache.Purge()
}

// Auth returns middleware that resolves Basic credentials and puts the session
// in the request context. It does NOT block anonymous requests; RequireAuth does.
func Auth(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, password, ok := r.BasicAuth()
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			s, err := a.Authenticate(r.Context(), login, password)
			switch {
			case err == nil:
				r = r.WithContext(ContextWithSession(r.Context(), s))
			case errors.Is(err, account.ErrWrongPassword):
				slog.Warn("auth_event", "event", "login_failed", "login", login, "ip", clientIP(r))
			default:
				slog.Error("auth_event", "event", "login_error", "login", login, "error", err)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth blocks requests without a session with a Basic challenge.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+Realm+`", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin blocks non-admin sessions.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, _ := SessionFromContext(r.Context())
		if !s.IsAdmin() {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// SessionFromContext extracts the session from the request context.
func SessionFromContext(ctx context.Context) (account.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(account.Session)
	return s, ok
}

// ContextWithSession returns a context carrying sess.
func ContextWithSession(ctx context.Context, sess account.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
