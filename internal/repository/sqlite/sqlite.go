// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// The bolt package is the primary backend; this one exists for embedders
// that already carry a SQL store and want the two collections as plain
// tables. Both backends satisfy the same interfaces, so swapping is a
// one-line change at the composition root.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed,
// works everywhere Go works.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/sakif/notepaste/internal/apperror"
)

// schemaVersion gates one-time structural upgrades, persisted in the
// database's user_version pragma. Structural changes bump this and append
// an idempotent creation step in migrate — existing tables and indices are
// never redefined in place.
const schemaVersion = 1

// DB wraps a sql.DB connection pool and hands out the per-entity
// repositories.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and brings the
// schema up to date.
//
// dbPath examples:
//   - "data/notepaste.db"  → file-based database (persistent)
//   - ":memory:"           → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Ping forces an immediate connection so a bad path surfaces here,
	// not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the two tables and their secondary indices, gated by
// user_version. Every step is IF NOT EXISTS, so re-running against an
// up-to-date database changes nothing.
//
// snippets.category_id deliberately carries NO foreign-key constraint:
// the reference is logical only, maintained by callers, and a snippet may
// outlive (or precede) its category.
func (db *DB) migrate() error {
	var version uint64
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("sqlite: reading schema version: %w", err)
	}
	if version > schemaVersion {
		return apperror.VersionMismatch(version, schemaVersion)
	}

	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS categories (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_categories_created_at ON categories(created_at);
	`)
	if err != nil {
		return fmt.Errorf("sqlite: creating categories table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS snippets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			code        TEXT NOT NULL DEFAULT '',
			language    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			category_id INTEGER NOT NULL DEFAULT 0,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snippets_name        ON snippets(name);
		CREATE INDEX IF NOT EXISTS idx_snippets_category_id ON snippets(category_id);
		CREATE INDEX IF NOT EXISTS idx_snippets_language    ON snippets(language);
		CREATE INDEX IF NOT EXISTS idx_snippets_created_at  ON snippets(created_at);
	`)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippets table: %w", err)
	}

	// AUTOINCREMENT (as opposed to bare INTEGER PRIMARY KEY) guarantees
	// deleted ids are never reused.
	if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("sqlite: writing schema version: %w", err)
	}

	return nil
}
