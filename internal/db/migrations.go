package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
// Every statement must be safe to run again on an existing database.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS search_history (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		search_id    TEXT    NOT NULL UNIQUE,
		session_id   TEXT    NOT NULL DEFAULT '',
		query        TEXT    NOT NULL,
		state        TEXT    NOT NULL,
		result_count INTEGER NOT NULL DEFAULT 0,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_search_history_session ON search_history (session_id, id)`,
	`CREATE TABLE IF NOT EXISTS recent_views (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT    NOT NULL DEFAULT '',
		owner      TEXT    NOT NULL,
		address    TEXT    NOT NULL,
		viewed_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (session_id, owner, address)
	)`,
	`CREATE TABLE IF NOT EXISTS api_cache (
		key        TEXT     PRIMARY KEY,
		body       BLOB     NOT NULL,
		expires_at DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions (idempotent — checks if column exists first)
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"search_history", "radius_miles", "REAL"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) (err error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}

	exists := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			exists = true
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterating columns: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("closing rows: %w", err)
	}
	if exists {
		return nil
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
