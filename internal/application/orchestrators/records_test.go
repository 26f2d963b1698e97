package orchestrators

import (
	"context"
	"fmt"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
)

// memStore is an in-memory RecordStore with per-table versions and injectable failures.
type memStore struct {
	tables   map[string][]storage.Row
	versions map[string]int64
	readErr  map[string]error
	writeErr error
	writes   map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		tables:   map[string][]storage.Row{},
		versions: map[string]int64{},
		readErr:  map[string]error{},
		writes:   map[string]int{},
	}
}

// ReadAll implements RecordStore.
func (m *memStore) ReadAll(_ context.Context, table string) (storage.Snapshot, error) {
	if err := m.readErr[table]; err != nil {
		return storage.Snapshot{}, err
	}
	rows := make([]storage.Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		c := storage.Row{}
		for k, v := range r {
			c[k] = v
		}
		rows = append(rows, c)
	}
	return storage.Snapshot{Table: table, Rows: rows, Version: m.versions[table]}, nil
}

// ReplaceAll implements RecordStore.
func (m *memStore) ReplaceAll(_ context.Context, table string, rows []storage.Row, expected int64) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if expected != storage.AnyVersion && expected != m.versions[table] {
		return fmt.Errorf("%s: %w", table, storage.ErrVersionConflict)
	}
	m.tables[table] = rows
	m.versions[table]++
	m.writes[table]++
	return nil
}

func (m *memStore) seed(table string, rows ...storage.Row) {
	m.tables[table] = append(m.tables[table], rows...)
}

var fixedTime = time.Date(2026, 1, 4, 9, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

var adminSession = account.Session{Login: "admin", Name: "관리자", Role: account.RoleAdmin}

func leaderSession(groups ...string) account.Session {
	return account.Session{Login: "leader", Name: "리더", Role: account.RoleLeader, Groups: groups}
}

func memberRow(name, group string) storage.Row {
	return storage.Row{"name": name, "group": group}
}

func attendanceRow(date, meeting, name, group string) storage.Row {
	return storage.Row{"date": date, "meeting": meeting, "name": name, "group": group, "status": "출석"}
}
