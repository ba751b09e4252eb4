// Package storage provides functionality for persisting and retrieving mindtree data.
// This file handles the general SQL database interfaces and schema.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"mindtree/local-app/internal/log"
)

// DBDriver represents the type of database driver
type DBDriver string

const (
	// SQLite3 is the cgo driver github.com/mattn/go-sqlite3.
	SQLite3 DBDriver = "sqlite3"
	// SQLite is the pure Go driver modernc.org/sqlite.
	SQLite DBDriver = "sqlite"
)

// timeLayout is fixed width so that text comparison orders timestamps.
const timeLayout = "2006-01-02 15:04:05.000000"

// Executor runs statements on a database or inside a transaction.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Database interface defines common database operations
type Database interface {
	Executor
	Open(dataSourceName string) error
	Close() error
	Begin(ctx context.Context) (*sql.Tx, error)
	InitSchema(ctx context.Context) error
}

// NewDatabase creates a new Database instance based on the specified driver
func NewDatabase(driver DBDriver, logger *log.Logger) (Database, error) {
	switch driver {
	case SQLite3, SQLite:
		return &SQLiteDatabase{BaseDatabase: BaseDatabase{logger: logger}, driver: driver}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// BaseDatabase provides a base implementation of some Database methods
type BaseDatabase struct {
	db     *sql.DB
	logger *log.Logger
}

// Begin starts a new transaction
func (b *BaseDatabase) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		b.logger.Error(ctx, "Failed to begin transaction", log.Fields{"error": err})
		return nil, err
	}
	b.logger.Debug(ctx, "Transaction started", nil)
	return tx, nil
}

// ExecContext executes a query without returning any rows
func (b *BaseDatabase) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	b.logger.Debug(ctx, "Executing query", log.Fields{"query": query, "args": args})
	return b.db.ExecContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows
func (b *BaseDatabase) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	b.logger.Debug(ctx, "Querying", log.Fields{"query": query, "args": args})
	return b.db.QueryContext(ctx, query, args...)
}

// QueryRowContext executes a query that is expected to return at most one row
func (b *BaseDatabase) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	b.logger.Debug(ctx, "Querying row", log.Fields{"query": query, "args": args})
	return b.db.QueryRowContext(ctx, query, args...)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS trees (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	last_accessed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tree_id INTEGER NOT NULL REFERENCES trees(id) ON DELETE CASCADE,
	parent_id INTEGER REFERENCES nodes(id) ON DELETE CASCADE,
	text TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	is_expanded INTEGER NOT NULL DEFAULT 1,
	background_color TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_tree ON nodes(tree_id);
CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, order_index);

CREATE TABLE IF NOT EXISTS node_prompts (
	node_id INTEGER PRIMARY KEY REFERENCES nodes(id) ON DELETE CASCADE,
	prompt TEXT NOT NULL DEFAULT 'このノードのアイデアを膨らませてください',
	updated_at TEXT NOT NULL
);

CREATE TRIGGER IF NOT EXISTS nodes_touch_tree_insert AFTER INSERT ON nodes
BEGIN
	UPDATE trees SET updated_at = NEW.updated_at WHERE id = NEW.tree_id;
END;

CREATE TRIGGER IF NOT EXISTS nodes_touch_tree_update AFTER UPDATE ON nodes
BEGIN
	UPDATE trees SET updated_at = NEW.updated_at WHERE id = NEW.tree_id;
END;
`

// InitSchema initializes the database schema
func (b *BaseDatabase) InitSchema(ctx context.Context) error {
	b.logger.Info(ctx, "Initializing database schema", nil)

	if _, err := b.db.ExecContext(ctx, schemaSQL); err != nil {
		b.logger.Error(ctx, "Failed to create tables", log.Fields{"error": err})
		return fmt.Errorf("failed to create tables: %w", err)
	}
	b.logger.Info(ctx, "Database schema initialized successfully", nil)
	return nil
}

// txExecutor logs statements run inside a transaction
type txExecutor struct {
	tx     *sql.Tx
	logger *log.Logger
}

func (t *txExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	t.logger.Debug(ctx, "Executing query in transaction", log.Fields{"query": query, "args": args})
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *txExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	t.logger.Debug(ctx, "Querying in transaction", log.Fields{"query": query, "args": args})
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *txExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

// validateDBDriver checks if the provided driver is supported
func validateDBDriver(driver string) (DBDriver, error) {
	switch DBDriver(driver) {
	case SQLite3:
		return SQLite3, nil
	case SQLite:
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
