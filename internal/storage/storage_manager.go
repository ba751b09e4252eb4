package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

// Store is the persistence contract consumed by the editing engine.
type Store interface {
	TreeStore
	NodeStore
	PromptStore
	// Tx runs fn against a Store whose writes commit or roll back together.
	Tx(ctx context.Context, fn func(Store) error) error
}

var _ Store = (*Storage)(nil)

// Storage represents the main storage implementation.
type Storage struct {
	db     Database
	exec   Executor
	inTx   bool
	logger *log.Logger
	TreeStore
	NodeStore
	PromptStore
}

// NewStorage creates a new Storage instance and initializes the database.
func NewStorage(cfg *model.Config, logger *log.Logger) (*Storage, error) {
	dbDriver, err := validateDBDriver(cfg.DatabaseDriver)
	if err != nil {
		return nil, fmt.Errorf("invalid database driver '%s': %w", cfg.DatabaseDriver, err)
	}

	db, err := NewDatabase(dbDriver, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database instance: %w", err)
	}

	// Construct the full path for the database file
	dataSourceName := filepath.Join(cfg.DatabaseDir, cfg.DatabaseFile)

	if err := db.Open(dataSourceName); err != nil {
		return nil, fmt.Errorf("failed to open database connection '%s': %w", dataSourceName, err)
	}

	if err := db.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info(context.Background(), "Storage opened", log.Fields{"driver": dbDriver, "path": dataSourceName})
	return newStorage(db, db, false, logger), nil
}

func newStorage(db Database, exec Executor, inTx bool, logger *log.Logger) *Storage {
	s := &Storage{db: db, exec: exec, inTx: inTx, logger: logger}
	s.TreeStore = NewTreeStorage(s)
	s.NodeStore = NewNodeStorage(s)
	s.PromptStore = NewPromptStorage(s)
	return s
}

// Close closes the database connection.
func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// Tx runs fn in a transaction. Calls nested inside a transaction join it.
func (s *Storage) Tx(ctx context.Context, fn func(Store) error) error {
	return s.tx(ctx, func(txs *Storage) error { return fn(txs) })
}

func (s *Storage) tx(ctx context.Context, fn func(*Storage) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txs := newStorage(s.db, &txExecutor{tx: tx, logger: s.logger}, true, s.logger)

	if err := fn(txs); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error(ctx, "Failed to rollback transaction", log.Fields{"error": rbErr})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error(ctx, "Failed to commit transaction", log.Fields{"error": err})
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
