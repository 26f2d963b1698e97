package web

import (
	"bytes"
	"fmt"
	"net/http"

	"hoejeong/internal/adapters/export"
	"hoejeong/internal/application/orchestrators"
	"hoejeong/internal/application/projections"
	"hoejeong/internal/domain/member"
)

// handleMembers serves GET /api/members?group=
func (s *server) handleMembers(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryMembers(r.Context(), projections.MembersQuery{
		Session: session(r),
		Group:   r.URL.Query().Get("group"),
	}, projections.MembersDeps{Store: s.Store})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type saveMembersRequest struct {
	Members []member.Member `json:"members"`
}

// handleSaveMembers serves PUT /api/members. The body is the full edited roster
// the session can see.
func (s *server) handleSaveMembers(w http.ResponseWriter, r *http.Request) {
	var req saveMembersRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := orchestrators.ExecuteSaveMembers(r.Context(), orchestrators.SaveMembersInput{
		Session: session(r),
		Members: req.Members,
	}, orchestrators.SaveMembersDeps{Store: s.Store, Locker: s.Locker})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type historyEditRequest struct {
	Date    string `json:"date"`
	Meeting string `json:"meeting"`
	Group   string `json:"group"`
}

type saveHistoryRequest struct {
	Name  string               `json:"name"`
	Group string               `json:"group"`
	Start string               `json:"start"`
	End   string               `json:"end"`
	Rows  []historyEditRequest `json:"rows"`
}

// handleSaveHistory serves PUT /api/members/history.
func (s *server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var req saveHistoryRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	start, err := bodyDate(req.Start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := bodyDate(req.End)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := make([]orchestrators.HistoryEdit, 0, len(req.Rows))
	for i, row := range req.Rows {
		date, err := bodyDate(row.Date)
		if err != nil {
			writeError(w, r, fmt.Errorf("row %d: %w", i+1, err))
			return
		}
		rows = append(rows, orchestrators.HistoryEdit{Date: date, Meeting: row.Meeting, Group: row.Group})
	}

	result, err := orchestrators.ExecuteSaveMemberHistory(r.Context(), orchestrators.SaveMemberHistoryInput{
		Session: session(r),
		Name:    req.Name,
		Group:   req.Group,
		Start:   start,
		End:     end,
		Rows:    rows,
	}, orchestrators.SaveMemberHistoryDeps{Store: s.Store, Locker: s.Locker})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// birthdayQuery reads year, month and group, defaulting to the current month.
func (s *server) birthdayQuery(r *http.Request) (projections.BirthdayCalendarQuery, error) {
	now := s.Now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		return projections.BirthdayCalendarQuery{}, err
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		return projections.BirthdayCalendarQuery{}, err
	}
	return projections.BirthdayCalendarQuery{
		Session: session(r),
		Year:    year,
		Month:   month,
		Group:   r.URL.Query().Get("group"),
	}, nil
}

// handleBirthdays serves GET /api/birthdays?year=&month=&group=
func (s *server) handleBirthdays(w http.ResponseWriter, r *http.Request) {
	query, err := s.birthdayQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, err := projections.QueryBirthdayCalendar(r.Context(), query, projections.BirthdayCalendarDeps{Store: s.Store, Now: s.Now})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, month)
}

// handleBirthdaysICS serves the same month as an iCalendar feed.
func (s *server) handleBirthdaysICS(w http.ResponseWriter, r *http.Request) {
	query, err := s.birthdayQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	month, err := projections.QueryBirthdayCalendar(r.Context(), query, projections.BirthdayCalendarDeps{Store: s.Store, Now: s.Now})
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteBirthdayICS(&buf, month, s.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"birthdays_%04d-%02d.ics\"", month.Year, month.Month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
