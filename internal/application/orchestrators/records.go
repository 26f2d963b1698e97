package orchestrators

import (
	"context"
	"fmt"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/adapters/storage/lock"
	"hoejeong/internal/domain/member"
)

// RecordStore is the whole-table store every orchestrator writes through.
type RecordStore interface {
	ReadAll(ctx context.Context, table string) (storage.Snapshot, error)
	ReplaceAll(ctx context.Context, table string, rows []storage.Row, expectedVersion int64) error
}

// TableLocker serializes read-modify-write cycles on one table.
type TableLocker interface {
	Acquire(ctx context.Context, key string) (lock.Unlock, error)
}

// withTableLock runs fn while holding the table's lock. A nil locker runs fn unlocked.
func withTableLock(ctx context.Context, locker TableLocker, table string, fn func() error) error {
	if locker == nil {
		return fn()
	}
	unlock, err := locker.Acquire(ctx, lock.TableKey(table))
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

// appendRow reads table, appends row and writes it back against the read version.
func appendRow(ctx context.Context, store RecordStore, locker TableLocker, table string, row storage.Row) error {
	return withTableLock(ctx, locker, table, func() error {
		snap, err := store.ReadAll(ctx, table)
		if err != nil {
			return fmt.Errorf("read %s: %w", table, err)
		}
		rows := append(snap.Rows, row)
		if err := store.ReplaceAll(ctx, table, rows, snap.Version); err != nil {
			return fmt.Errorf("write %s: %w", table, err)
		}
		return nil
	})
}

// loadRoster parses the members table, skipping rows without a name or group.
func loadRoster(ctx context.Context, store RecordStore) ([]member.Member, error) {
	snap, err := store.ReadAll(ctx, storage.TableMembers)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	out := make([]member.Member, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		m, err := member.FromRow(row)
		if err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// onRoster reports whether (group, name) is a roster member.
func onRoster(roster []member.Member, group, name string) bool {
	for _, m := range roster {
		if m.Group == group && m.Name == name {
			return true
		}
	}
	return false
}

// sessionAuthor names the session user in authored rows.
func sessionAuthor(name, login string) string {
	if name != "" {
		return name
	}
	return login
}
