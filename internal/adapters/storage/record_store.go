package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Row is one stored record keyed by column key. Every value is a string.
type Row = map[string]string

// AnyVersion disables the optimistic-concurrency check on ReplaceAll.
const AnyVersion int64 = -1

// DefaultRetryAfter is how long callers should wait after ErrUnavailable.
// Spreadsheet backends rate-limit for about a minute.
const DefaultRetryAfter = time.Minute

// Storage errors
var (
	ErrUnavailable     = errors.New("record store unavailable")
	ErrVersionConflict = errors.New("table changed since it was read")
	ErrUnknownTable    = errors.New("unknown table")
)

// Snapshot is a whole-table read.
// Version increases with every successful ReplaceAll of the table.
type Snapshot struct {
	Table   string
	Rows    []Row
	Version int64
}

// RecordStore is the tabular store behind every table: read everything, or
// replace everything.
type RecordStore interface {
	// ReadAll returns every row of table in stored order.
	ReadAll(ctx context.Context, table string) (Snapshot, error)
	// ReplaceAll overwrites table with rows. When expectedVersion is not
	// AnyVersion and the table has moved on, it fails with ErrVersionConflict.
	ReplaceAll(ctx context.Context, table string, rows []Row, expectedVersion int64) error
}

// UnavailableError reports a failed read or write against the backing store.
// It always matches ErrUnavailable with errors.Is.
type UnavailableError struct {
	Op         string
	Table      string
	RetryAfter time.Duration
	Err        error
}

// Error implements error.
func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s %s: record store unavailable (retry after %s): %v", e.Op, e.Table, e.RetryAfter, e.Err)
}

// Unwrap returns the backend error.
func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrUnavailable) hold.
func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Unavailable wraps a backend failure. Errors that already carry meaning for the
// caller (version conflicts, unknown tables, earlier wraps) pass through untouched.
// PRE: none
// POST: Returns nil for nil
func Unavailable(op, table string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrVersionConflict) || errors.Is(err, ErrUnknownTable) || errors.Is(err, ErrUnavailable) {
		return err
	}
	return &UnavailableError{Op: op, Table: table, RetryAfter: DefaultRetryAfter, Err: err}
}

// RetryAfter extracts the suggested wait from an unavailable error.
func RetryAfter(err error) (time.Duration, bool) {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue.RetryAfter, true
	}
	return 0, false
}
