package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/adapters/storage/lock"
	"hoejeong/internal/domain/account"
	"hoejeong/internal/domain/attendance"
	"hoejeong/internal/domain/calendar"
	"hoejeong/internal/domain/member"
	"hoejeong/internal/domain/notice"
	"hoejeong/internal/domain/prayer"
	"hoejeong/internal/domain/report"
	"hoejeong/internal/domain/schedule"
)

// lockRetryAfter is suggested when another writer holds the table lock.
const lockRetryAfter = 5 * time.Second

// errBadRequest marks malformed request bodies and query parameters.
var errBadRequest = errors.New("bad request")

// badRequest wraps a decode or parse failure so writeError maps it to 400.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// validationErrors are the domain errors a client can fix by changing its input.
var validationErrors = []error{
	errBadRequest,
	schedule.ErrInvalidDate,
	attendance.ErrEmptyName, attendance.ErrEmptyMeeting, attendance.ErrEmptyGroup,
	attendance.ErrMissingDate, attendance.ErrOutsideCell, attendance.ErrMeetingNotScheduled,
	member.ErrEmptyName, member.ErrEmptyGroup, member.ErrDuplicateMember,
	member.ErrUnknownMember, member.ErrAmbiguousMember, member.ErrInvalidField,
	prayer.ErrEmptyContent, prayer.ErrContentTooLong, prayer.ErrEmptyName, prayer.ErrEmptyGroup, prayer.ErrMissingDate,
	report.ErrEmptyContent, report.ErrEmptyGroup, report.ErrMissingDate,
	notice.ErrEmptyTitle, notice.ErrTitleTooLong, notice.ErrEmptyContent, notice.ErrMissingID,
	account.ErrEmptyLogin, account.ErrInvalidRole, account.ErrEmptyPassword,
	account.ErrPasswordTooShort, account.ErrLeaderNeedsGroup,
	calendar.ErrInvalidMonth,
}

// statusFor maps an orchestrator or projection error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrUnavailable), errors.Is(err, lock.ErrLockBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrVersionConflict),
		errors.Is(err, notice.ErrAlreadyPinned), errors.Is(err, notice.ErrNotPinned):
		return http.StatusConflict
	case errors.Is(err, account.ErrForbidden), errors.Is(err, account.ErrForbiddenGroup):
		return http.StatusForbidden
	case errors.Is(err, account.ErrWrongPassword):
		return http.StatusUnauthorized
	case errors.Is(err, notice.ErrNotFound):
		return http.StatusNotFound
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// writeError sends err as a JSON error body. Internal errors are logged and
// replaced by a generic message so details never reach the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		msg = "internal server error"
	case http.StatusServiceUnavailable:
		wait, ok := storage.RetryAfter(err)
		if !ok {
			wait = lockRetryAfter
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		slog.Warn("store_unavailable", "method", r.Method, "path", r.URL.Path, "error", err.Error())
		msg = "temporarily unavailable, retry later"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJSON encodes v with status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_error", "error", err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

// queryDate parses a YYYY-MM-DD query parameter, falling back to def when absent.
func queryDate(r *http.Request, key string, def time.Time) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	d, err := schedule.ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s=%q: %w", key, raw, err)
	}
	return d, nil
}

// queryInt parses an integer query parameter, falling back to def when absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("%s must be a number", key)
	}
	return n, nil
}

// bodyDate parses an optional date from a request body field.
func bodyDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return schedule.ParseDate(raw)
}
