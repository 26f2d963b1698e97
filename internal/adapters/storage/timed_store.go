package storage

import (
	"context"
	"log/slog"
	"time"

	"hoejeong/internal/adapters/http/perf"
)

// TimedStore wraps a RecordStore to log slow whole-table calls and record them
// to a collector. It sits outside the cache, so cache hits are timed too.
type TimedStore struct {
	next      RecordStore
	collector *perf.Collector
	threshold time.Duration
}

// Compile-time check that *TimedStore satisfies RecordStore.
var _ RecordStore = (*TimedStore)(nil)

// NewTimedStore wraps next with timing instrumentation.
// PRE: next is non-nil; collector may be nil
func NewTimedStore(next RecordStore, collector *perf.Collector, threshold time.Duration) *TimedStore {
	if threshold <= 0 {
		threshold = DefaultSlowQueryMs * time.Millisecond
	}
	return &TimedStore{next: next, collector: collector, threshold: threshold}
}

func (t *TimedStore) observe(op, table string, rows int, start time.Time, err error) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= t.threshold {
		slog.Warn("slow_store_op", "op", op, "table", table, "rows", rows, "duration_ms", durationMs, "error", err)
	}
	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindStore,
			Path:       op + " " + table,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ReadAll implements RecordStore.
func (t *TimedStore) ReadAll(ctx context.Context, table string) (Snapshot, error) {
	start := time.Now()
	snap, err := t.next.ReadAll(ctx, table)
	t.observe("read", table, len(snap.Rows), start, err)
	return snap, err
}

// ReplaceAll implements RecordStore.
func (t *TimedStore) ReplaceAll(ctx context.Context, table string, rows []Row, expectedVersion int64) error {
	start := time.Now()
	err := t.next.ReplaceAll(ctx, table, rows, expectedVersion)
	t.observe("write", table, len(rows), start, err)
	return err
}
