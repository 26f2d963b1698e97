// Package web is the JSON HTTP adapter over the orchestrators and projections.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hoejeong/internal/adapters/http/middleware"
	"hoejeong/internal/adapters/http/perf"
	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/application/orchestrators"
	"hoejeong/internal/domain/account"
)

// DefaultRateLimitPerSecond is the per-IP request budget.
const DefaultRateLimitPerSecond = 20

// Deps holds everything the handlers need.
type Deps struct {
	Store     storage.RecordStore
	Locker    orchestrators.TableLocker
	Collector *perf.Collector

	// Now returns the current time in the church's time zone.
	Now        func() time.Time
	GenerateID func() string

	CSRFKey            []byte
	SecureCookies      bool
	TrustedOrigins     []string
	RateLimitPerSecond int
	SlowRequest        time.Duration
	CredentialTTL      time.Duration
}

// server carries Deps into the handler methods.
type server struct {
	Deps
	auth *middleware.Authenticator
}

// NewMux wires every route behind the middleware chain.
// PRE: deps.Store is non-nil; deps.CSRFKey is 32 bytes
// POST: Returns a handler ready to serve
func NewMux(deps Deps) http.Handler {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.GenerateID == nil {
		deps.GenerateID = func() string { return uuid.New().String() }
	}
	if deps.RateLimitPerSecond <= 0 {
		deps.RateLimitPerSecond = DefaultRateLimitPerSecond
	}
	s := &server{Deps: deps}
	s.auth = middleware.NewAuthenticator(s.verify, 256, deps.CredentialTTL)

	mux := http.NewServeMux()
	s.routes(mux)

	limiter := middleware.NewRateLimiter(deps.RateLimitPerSecond, time.Second)
	return middleware.Chain(mux,
		middleware.Timing(deps.Collector, deps.SlowRequest),
		middleware.SecurityHeaders,
		middleware.RateLimit(limiter),
		middleware.CSRF(deps.CSRFKey, deps.SecureCookies, deps.TrustedOrigins),
		middleware.Auth(s.auth),
	)
}

// routes registers every endpoint.
func (s *server) routes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	admin := func(h http.HandlerFunc) http.Handler { return middleware.RequireAdmin(h) }

	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.Handle("GET /api/attendance/sheet", authed(s.handleAttendanceSheet))
	mux.Handle("POST /api/attendance/reconcile", authed(s.handleReconcile))

	mux.Handle("GET /api/stats", authed(s.handleStats))
	mux.Handle("GET /api/stats/weekly", authed(s.handleWeeklyStats))
	mux.Handle("GET /api/stats/export.xlsx", authed(s.handleStatsExport))

	mux.Handle("GET /api/members", authed(s.handleMembers))
	mux.Handle("PUT /api/members", authed(s.handleSaveMembers))
	mux.Handle("PUT /api/members/history", authed(s.handleSaveHistory))

	mux.Handle("GET /api/birthdays", authed(s.handleBirthdays))
	mux.Handle("GET /api/birthdays.ics", authed(s.handleBirthdaysICS))

	mux.Handle("GET /api/prayers", authed(s.handlePrayers))
	mux.Handle("POST /api/prayers", authed(s.handleAddPrayer))
	mux.Handle("GET /api/reports", authed(s.handleReports))
	mux.Handle("POST /api/reports", authed(s.handleSubmitReport))

	mux.Handle("GET /api/notices", authed(s.handleNotices))
	mux.Handle("POST /api/notices", admin(s.handlePostNotice))
	mux.Handle("DELETE /api/notices/{id}", admin(s.handleDeleteNotice))
	mux.Handle("POST /api/notices/{id}/pin", admin(s.handlePinNotice(true)))
	mux.Handle("DELETE /api/notices/{id}/pin", admin(s.handlePinNotice(false)))

	mux.Handle("GET /api/me", authed(s.handleMe))
	mux.Handle("POST /api/accounts", admin(s.handleSaveAccount))
	mux.Handle("GET /api/perf", admin(s.handlePerf))
}

// verify checks Basic credentials against the users table.
func (s *server) verify(ctx context.Context, login, password string) (account.Session, error) {
	return orchestrators.ExecuteAuthenticate(ctx, orchestrators.AuthenticateInput{
		Login:    login,
		Password: password,
	}, orchestrators.AuthenticateDeps{Store: s.Store, Locker: s.Locker})
}

// session returns the caller. RequireAuth guarantees it is present.
func session(r *http.Request) account.Session {
	sess, _ := middleware.SessionFromContext(r.Context())
	return sess
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
