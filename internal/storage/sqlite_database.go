package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLiteDatabase implements the Database interface for both sqlite drivers
type SQLiteDatabase struct {
	BaseDatabase
	driver DBDriver
}

// dsn appends the connection pragmas in the syntax each driver understands
func (s *SQLiteDatabase) dsn(path string) string {
	if s.driver == SQLite {
		return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	return path + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// Open opens a connection to the SQLite database
func (s *SQLiteDatabase) Open(dataSourceName string) error {
	// Ensure the directory for the database file exists
	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory '%s': %w", dbDir, err)
	}

	db, err := sql.Open(string(s.driver), s.dsn(dataSourceName))
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// One connection keeps pragmas and transactions on the same handle
	db.SetMaxOpenConns(1)

	// Set pragmas for better performance and reliability
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to set SQLite pragma %q: %w", pragma, err)
		}
	}

	// Verify the connection
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("failed to verify database connection: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the connection to the SQLite database
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("failed to close SQLite database: %w", err)
		}
	}
	return nil
}
