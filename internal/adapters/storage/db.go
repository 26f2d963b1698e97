package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

// migrations is the ordered schema history. Append only.
// Every table carries a hidden seq column that preserves sheet row order.
var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS table_version (
				name TEXT PRIMARY KEY,
				version INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS "members" (
				seq INTEGER PRIMARY KEY,
				"name" TEXT NOT NULL DEFAULT '',
				"sex" TEXT NOT NULL DEFAULT '',
				"birthday" TEXT NOT NULL DEFAULT '',
				"lunar_flag" TEXT NOT NULL DEFAULT '',
				"phone" TEXT NOT NULL DEFAULT '',
				"address" TEXT NOT NULL DEFAULT '',
				"family_id" TEXT NOT NULL DEFAULT '',
				"group" TEXT NOT NULL DEFAULT '',
				"note" TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS "attendance_log" (
				seq INTEGER PRIMARY KEY,
				"date" TEXT NOT NULL DEFAULT '',
				"meeting" TEXT NOT NULL DEFAULT '',
				"name" TEXT NOT NULL DEFAULT '',
				"group" TEXT NOT NULL DEFAULT '',
				"status" TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_attendance_cell ON "attendance_log" ("date", "meeting", "group")`,
			`CREATE TABLE IF NOT EXISTS "users" (
				seq INTEGER PRIMARY KEY,
				"login" TEXT NOT NULL DEFAULT '',
				"password_hash" TEXT NOT NULL DEFAULT '',
				"name" TEXT NOT NULL DEFAULT '',
				"role" TEXT NOT NULL DEFAULT '',
				"groups" TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS "prayer_log" (
				seq INTEGER PRIMARY KEY,
				"date" TEXT NOT NULL DEFAULT '',
				"name" TEXT NOT NULL DEFAULT '',
				"group" TEXT NOT NULL DEFAULT '',
				"content" TEXT NOT NULL DEFAULT '',
				"author" TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS "report_log" (
				seq INTEGER PRIMARY KEY,
				"date" TEXT NOT NULL DEFAULT '',
				"group" TEXT NOT NULL DEFAULT '',
				"author" TEXT NOT NULL DEFAULT '',
				"content" TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS "notice_log" (
				seq INTEGER PRIMARY KEY,
				"id" TEXT NOT NULL DEFAULT '',
				"date" TEXT NOT NULL DEFAULT '',
				"title" TEXT NOT NULL DEFAULT '',
				"content" TEXT NOT NULL DEFAULT '',
				"author" TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
	{
		version: 2,
		name:    "notice_pinned",
		stmts: []string{
			`ALTER TABLE "notice_log" ADD COLUMN "pinned" TEXT NOT NULL DEFAULT ''`,
		},
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the version recorded in schema_version (0 for a fresh database).
// PRE: db is a valid database connection
// POST: Returns the highest applied migration version
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("failed to create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid database connection; path is used for logging only
// POST: SchemaVersion(db) == LatestSchemaVersion()
// INVARIANT: Applied migrations are never re-run
func MigrateDB(db *sql.DB, path string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_event", "event", "migration_applied", "db", path, "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}
