package web

import (
	"net/http"
	"time"

	"hoejeong/internal/application/orchestrators"
)

// perfWindow is how far back /api/perf aggregates.
const perfWindow = time.Hour

// handleMe serves GET /api/me: the caller's session and default scope.
func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"login":         sess.Login,
		"name":          sess.Name,
		"role":          sess.Role,
		"groups":        sess.Groups,
		"default_group": sess.DefaultGroup(),
	})
}

type saveAccountRequest struct {
	Login    string   `json:"login"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	Groups   []string `json:"groups"`
}

type accountView struct {
	Login  string   `json:"login"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
}

// handleSaveAccount serves POST /api/accounts. Admin only. Cached credentials
// are dropped so a changed password or role applies on the next request.
func (s *server) handleSaveAccount(w http.ResponseWriter, r *http.Request) {
	var req saveAccountRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	acct, err := orchestrators.ExecuteSaveAccount(r.Context(), orchestrators.SaveAccountInput{
		Session:  session(r),
		Login:    req.Login,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		Groups:   req.Groups,
	}, orchestrators.SaveAccountDeps{Store: s.Store, Locker: s.Locker})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.auth.Forget()
	writeJSON(w, http.StatusOK, accountView{Login: acct.Login, Name: acct.Name, Role: acct.Role, Groups: acct.Groups})
}

// handlePerf serves GET /api/perf?top= with the last hour's timings. Admin only.
func (s *server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.Collector == nil {
		writeJSON(w, http.StatusOK, map[string]any{"total_recorded": 0})
		return
	}
	top, err := queryInt(r, "top", 10)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Collector.Snapshot(s.Now().Add(-perfWindow), max(top, 1)))
}
