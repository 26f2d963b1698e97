package projections

import (
	"context"
	"time"

	"hoejeong/internal/adapters/storage"
	"hoejeong/internal/domain/account"
)

// fakeReader serves seeded tables and injectable read failures.
type fakeReader struct {
	tables  map[string][]storage.Row
	readErr map[string]error
}

func newFakeReader() *fakeReader {
	return &fakeReader{tables: map[string][]storage.Row{}, readErr: map[string]error{}}
}

// ReadAll implements RecordReader.
func (f *fakeReader) ReadAll(_ context.Context, table string) (storage.Snapshot, error) {
	if err := f.readErr[table]; err != nil {
		return storage.Snapshot{}, err
	}
	rows := append([]storage.Row{}, f.tables[table]...)
	return storage.Snapshot{Table: table, Rows: rows, Version: 1}, nil
}

func (f *fakeReader) seed(table string, rows ...storage.Row) {
	f.tables[table] = append(f.tables[table], rows...)
}

var adminSession = account.Session{Login: "admin", Name: "관리자", Role: account.RoleAdmin}

func leaderSession(groups ...string) account.Session {
	return account.Session{Login: "leader", Name: "리더", Role: account.RoleLeader, Groups: groups}
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func attendanceRow(date, meeting, name, group string) storage.Row {
	return storage.Row{"date": date, "meeting": meeting, "name": name, "group": group, "status": "출석"}
}

func memberRow(name, group, birthday, lunar string) storage.Row {
	return storage.Row{"name": name, "group": group, "birthday": birthday, "lunar_flag": lunar}
}
