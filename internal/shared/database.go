package shared

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// NewDatabase opens a connection to a SQLite database at the specified path.
// The path can be ":memory:" for an in-memory database.
func NewDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorage, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", ErrStorage, err)
	}

	return db, nil
}

// ConfigureDatabase sets connection pool settings for the database.
//
// SQLite serialises writers, and a ":memory:" database only exists on a single connection, so the journal uses one.
func ConfigureDatabase(db *sql.DB, maxOpenConns, maxIdleConns int) {
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
}

// OpenJournalDatabase creates the parent directory of path, opens the database with a single connection
// and applies pending migrations.
func OpenJournalDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("%w: create database directory: %v", ErrStorage, err)
		}
	}

	db, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	ConfigureDatabase(db, 1, 1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enable foreign keys: %v", ErrStorage, err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
