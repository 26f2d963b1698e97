package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"hoejeong/internal/adapters/export"
	"hoejeong/internal/application/orchestrators"
	"hoejeong/internal/application/projections"
	"hoejeong/internal/domain/schedule"
)

// handleAttendanceSheet serves GET /api/attendance/sheet?date=&group=
func (s *server) handleAttendanceSheet(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r, "date", s.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := projections.QueryAttendanceSheet(r.Context(), projections.AttendanceSheetQuery{
		Session: session(r),
		Date:    date,
		Group:   r.URL.Query().Get("group"),
	}, projections.AttendanceSheetDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type reconcileRequest struct {
	Date     string                        `json:"date"`
	Group    string                        `json:"group"`
	Meetings []string                      `json:"meetings"`
	Marks    []orchestrators.ReconcileMark `json:"marks"`
}

// handleReconcile serves POST /api/attendance/reconcile.
func (s *server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := bodyDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := orchestrators.ExecuteReconcileAttendance(r.Context(), orchestrators.ReconcileAttendanceInput{
		Session:  session(r),
		Date:     date,
		Group:    req.Group,
		Meetings: req.Meetings,
		Marks:    req.Marks,
	}, orchestrators.ReconcileAttendanceDeps{Store: s.Store, Locker: s.Locker})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// statsQuery reads start, end, group and member. The range defaults to the
// first of the current month through today.
func (s *server) statsQuery(r *http.Request) (projections.AttendanceStatsQuery, error) {
	today := schedule.Day(s.Now())
	start, err := queryDate(r, "start", time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return projections.AttendanceStatsQuery{}, err
	}
	end, err := queryDate(r, "end", today)
	if err != nil {
		return projections.AttendanceStatsQuery{}, err
	}
	q := r.URL.Query()
	return projections.AttendanceStatsQuery{
		Session: session(r),
		Start:   start,
		End:     end,
		Group:   q.Get("group"),
		Member:  q.Get("member"),
	}, nil
}

// handleStats serves GET /api/stats?start=&end=&group=&member=
func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	query, err := s.statsQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := projections.QueryAttendanceStats(r.Context(), query, projections.AttendanceStatsDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleWeeklyStats serves GET /api/stats/weekly?date=&group=
func (s *server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	anchor, err := queryDate(r, "date", s.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := projections.QueryWeeklyStats(r.Context(), projections.WeeklyStatsQuery{
		Session: session(r),
		Anchor:  anchor,
		Group:   r.URL.Query().Get("group"),
	}, projections.AttendanceStatsDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleStatsExport serves GET /api/stats/export.xlsx with the same filters as /api/stats.
func (s *server) handleStatsExport(w http.ResponseWriter, r *http.Request) {
	query, err := s.statsQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	result, err := projections.QueryAttendanceStats(r.Context(), query, projections.AttendanceStatsDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	// Render fully before writing headers so a failure still gets a JSON error.
	var buf bytes.Buffer
	if err := export.WriteStatsWorkbook(&buf, result); err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("attendance_%s_%s.xlsx", schedule.FormatDate(result.Start), schedule.FormatDate(result.End))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
