package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SQLiteRecordStore keeps each table in a SQLite table of text columns.
// ReplaceAll runs in a single transaction, so readers never see a half-written table.
type SQLiteRecordStore struct {
	db SQLDB
}

// Compile-time check that *SQLiteRecordStore satisfies RecordStore.
var _ RecordStore = (*SQLiteRecordStore)(nil)

// NewSQLiteRecordStore creates a record store over a migrated database.
// PRE: MigrateDB has been applied to db
func NewSQLiteRecordStore(db SQLDB) *SQLiteRecordStore {
	return &SQLiteRecordStore{db: db}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quotedColumns(s Schema) string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = quoteIdent(c.Key)
	}
	return strings.Join(cols, ", ")
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func readVersion(ctx context.Context, q queryer, table string) (int64, error) {
	var v int64
	err := q.QueryRowContext(ctx, `SELECT version FROM table_version WHERE name = ?`, table).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return v, err
}

// ReadAll returns every row of table ordered by insertion.
// PRE: table is registered in Schemas
// POST: Rows carry exactly the schema's keys; failures are UnavailableError
func (s *SQLiteRecordStore) ReadAll(ctx context.Context, table string) (Snapshot, error) {
	schema, err := LookupSchema(table)
	if err != nil {
		return Snapshot{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, Unavailable("read", table, err)
	}
	defer tx.Rollback()

	version, err := readVersion(ctx, tx, table)
	if err != nil {
		return Snapshot{}, Unavailable("read", table, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY seq`, quotedColumns(schema), quoteIdent(table))
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return Snapshot{}, Unavailable("read", table, err)
	}
	defer rows.Close()

	snap := Snapshot{Table: table, Version: version, Rows: []Row{}}
	values := make([]sql.NullString, len(schema.Columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return Snapshot{}, Unavailable("read", table, err)
		}
		row := make(Row, len(schema.Columns))
		for i, c := range schema.Columns {
			row[c.Key] = values[i].String
		}
		snap.Rows = append(snap.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, Unavailable("read", table, err)
	}
	return snap, nil
}

// ReplaceAll deletes every row of table and inserts rows, bumping the table version.
// PRE: table is registered in Schemas
// POST: On success the table holds exactly rows, in order
// INVARIANT: On any failure the table is left unchanged
func (s *SQLiteRecordStore) ReplaceAll(ctx context.Context, table string, rows []Row, expectedVersion int64) error {
	schema, err := LookupSchema(table)
	if err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Unavailable("write", table, err)
	}
	defer tx.Rollback()

	current, err := readVersion(ctx, tx, table)
	if err != nil {
		return Unavailable("write", table, err)
	}
	if expectedVersion != AnyVersion && expectedVersion != current {
		return fmt.Errorf("%s: read version %d, store at %d: %w", table, expectedVersion, current, ErrVersionConflict)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+quoteIdent(table)); err != nil {
		return Unavailable("write", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(schema.Columns)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %s (seq, %s) VALUES (?, %s)`, quoteIdent(table), quotedColumns(schema), placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return Unavailable("write", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(schema.Columns)+1)
	for i, row := range rows {
		args[0] = i + 1
		for j, c := range schema.Columns {
			args[j+1] = row[c.Key]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return Unavailable("write", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO table_version (name, version) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET version = excluded.version`,
		table, current+1); err != nil {
		return Unavailable("write", table, err)
	}
	if err := tx.Commit(); err != nil {
		return Unavailable("write", table, err)
	}
	return nil
}
