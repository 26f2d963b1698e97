// Package cache puts a short-lived snapshot cache in front of a RecordStore.
// Spreadsheet backends throttle reads, and the dashboard reads the same
// tables on every page.
package cache

import (
	"context"
	"log/slog"
	"time"

	"hoejeong/internal/adapters/storage"
)

// MaxTTL caps how stale a cached snapshot may be.
const MaxTTL = 60 * time.Second

// Backend holds snapshots keyed by table, plus a per-table generation that
// every invalidation bumps.
// INVARIANT: SetIfGeneration stores nothing once Invalidate has run after gen was read
type Backend interface {
	Get(ctx context.Context, table string) (storage.Snapshot, bool, error)
	Generation(ctx context.Context, table string) (int64, error)
	SetIfGeneration(ctx context.Context, snap storage.Snapshot, gen int64) (bool, error)
	Invalidate(ctx context.Context, table string) error
}

// Store decorates a RecordStore with a read-through snapshot cache.
type Store struct {
	next    storage.RecordStore
	backend Backend
}

// Compile-time check that *Store satisfies storage.RecordStore.
var _ storage.RecordStore = (*Store)(nil)

// New wraps next with backend.
// PRE: next and backend are non-nil
func New(next storage.RecordStore, backend Backend) *Store {
	return &Store{next: next, backend: backend}
}

// ClampTTL bounds ttl to (0, MaxTTL].
func ClampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}

// copySnapshot gives each caller rows it may mutate without touching the cache.
func copySnapshot(s storage.Snapshot) storage.Snapshot {
	rows := make([]storage.Row, len(s.Rows))
	for i, r := range s.Rows {
		c := make(storage.Row, len(r))
		for k, v := range r {
			c[k] = v
		}
		rows[i] = c
	}
	return storage.Snapshot{Table: s.Table, Rows: rows, Version: s.Version}
}

// ReadAll serves the cached snapshot when present, otherwise reads through.
// Backend failures degrade to a direct read.
// INVARIANT: a read that overlaps a ReplaceAll never fills the cache
func (s *Store) ReadAll(ctx context.Context, table string) (storage.Snapshot, error) {
	snap, ok, err := s.backend.Get(ctx, table)
	if err != nil {
		slog.Warn("cache_event", "event", "get_failed", "table", table, "error", err)
	}
	if ok {
		slog.Debug("cache_event", "event", "hit", "table", table, "version", snap.Version)
		return copySnapshot(snap), nil
	}

	gen, genErr := s.backend.Generation(ctx, table)
	snap, err = s.next.ReadAll(ctx, table)
	if err != nil {
		return storage.Snapshot{}, err
	}
	slog.Debug("cache_event", "event", "miss", "table", table, "version", snap.Version)
	if genErr != nil {
		slog.Warn("cache_event", "event", "generation_failed", "table", table, "error", genErr)
		return snap, nil
	}
	stored, err := s.backend.SetIfGeneration(ctx, copySnapshot(snap), gen)
	switch {
	case err != nil:
		slog.Warn("cache_event", "event", "set_failed", "table", table, "error", err)
	case !stored:
		slog.Debug("cache_event", "event", "fill_skipped", "table", table, "version", snap.Version)
	}
	return snap, nil
}

// ReplaceAll writes through and drops the cached snapshot.
// INVARIANT: The entry is dropped even when the write fails, since a failed
// write may still have partly reached the backend.
func (s *Store) ReplaceAll(ctx context.Context, table string, rows []storage.Row, expectedVersion int64) error {
	err := s.next.ReplaceAll(ctx, table, rows, expectedVersion)
	if derr := s.backend.Invalidate(ctx, table); derr != nil {
		slog.Warn("cache_event", "event", "invalidate_failed", "table", table, "error", derr)
	} else {
		slog.Debug("cache_event", "event", "invalidated", "table", table)
	}
	return err
}
