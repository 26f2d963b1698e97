package web

import (
	"net/http"
	"time"

	"hoejeong/internal/application/orchestrators"
	"hoejeong/internal/application/paging"
	"hoejeong/internal/application/projections"
)

// handlePrayers serves GET /api/prayers?group=&name=&page=&per_page=
func (s *server) handlePrayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := projections.QueryPrayerHistory(r.Context(), projections.PrayerHistoryQuery{
		Session: session(r),
		Group:   q.Get("group"),
		Name:    q.Get("name"),
	}, projections.PrayerHistoryDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paging.Slice(entries, paging.ParseParams(q)))
}

type addPrayerRequest struct {
	Date    string `json:"date"`
	Name    string `json:"name"`
	Group   string `json:"group"`
	Content string `json:"content"`
}

// handleAddPrayer serves POST /api/prayers.
func (s *server) handleAddPrayer(w http.ResponseWriter, r *http.Request) {
	var req addPrayerRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := bodyDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := orchestrators.ExecuteAddPrayer(r.Context(), orchestrators.AddPrayerInput{
		Session: session(r),
		Date:    date,
		Name:    req.Name,
		Group:   req.Group,
		Content: req.Content,
	}, orchestrators.AddPrayerDeps{Store: s.Store, Locker: s.Locker, Now: s.Now})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// handleReports serves GET /api/reports?group=&start=&end=&page=&per_page=
// A missing start or end leaves that side open.
func (s *server) handleReports(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start", time.Time{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "end", time.Time{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	reports, err := projections.QueryReports(r.Context(), projections.ReportsQuery{
		Session: session(r),
		Group:   r.URL.Query().Get("group"),
		Start:   start,
		End:     end,
	}, projections.ReportsDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, paging.Slice(reports, paging.ParseParams(r.URL.Query())))
}

type submitReportRequest struct {
	Date    string `json:"date"`
	Group   string `json:"group"`
	Content string `json:"content"`
}

// handleSubmitReport serves POST /api/reports.
func (s *server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitReportRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	date, err := bodyDate(req.Date)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := orchestrators.ExecuteSubmitReport(r.Context(), orchestrators.SubmitReportInput{
		Session: session(r),
		Date:    date,
		Group:   req.Group,
		Content: req.Content,
	}, orchestrators.SubmitReportDeps{Store: s.Store, Locker: s.Locker, Now: s.Now})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rep)
}

// handleNotices serves GET /api/notices.
func (s *server) handleNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := projections.QueryNotices(r.Context(), projections.NoticesDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notices)
}

func (s *server) noticeDeps() orchestrators.NoticeDeps {
	return orchestrators.NoticeDeps{Store: s.Store, Locker: s.Locker, GenerateID: s.GenerateID, Now: s.Now}
}

type postNoticeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Pinned  bool   `json:"pinned"`
}

// handlePostNotice serves POST /api/notices. Admin only.
func (s *server) handlePostNotice(w http.ResponseWriter, r *http.Request) {
	var req postNoticeRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := orchestrators.ExecutePostNotice(r.Context(), orchestrators.PostNoticeInput{
		Session: session(r),
		Title:   req.Title,
		Content: req.Content,
		Pinned:  req.Pinned,
	}, s.noticeDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// handleDeleteNotice serves DELETE /api/notices/{id}. Admin only.
func (s *server) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	err := orchestrators.ExecuteDeleteNotice(r.Context(), orchestrators.DeleteNoticeInput{
		Session:  session(r),
		NoticeID: id,
	}, s.noticeDeps())
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePinNotice serves POST (pin) and DELETE (unpin) on /api/notices/{id}/pin.
func (s *server) handlePinNotice(pinned bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := orchestrators.ExecutePinNotice(r.Context(), orchestrators.PinNoticeInput{
			Session:  session(r),
			NoticeID: r.PathValue("id"),
			Pinned:   pinned,
		}, s.noticeDeps())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, n)
	}
}
