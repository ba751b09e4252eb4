package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

// TreeStore defines the interface for tree-related storage operations.
type TreeStore interface {
	CreateTree(ctx context.Context, name string) (int64, error)
	ListTrees(ctx context.Context) ([]*model.Tree, error)
	GetTree(ctx context.Context, id int64) (*model.Tree, error)
	RenameTree(ctx context.Context, id int64, name string) error
	DeleteTree(ctx context.Context, id int64) error
	TouchLastAccessed(ctx context.Context, id int64) error
}

// TreeStorage implements the TreeStore interface.
type TreeStorage struct {
	storage *Storage
	logger  *log.Logger
}

// NewTreeStorage creates a new TreeStorage instance.
func NewTreeStorage(storage *Storage) *TreeStorage {
	return &TreeStorage{
		storage: storage,
		logger:  storage.logger,
	}
}

// CreateTree inserts a tree together with its root node, whose text is the tree name.
func (s *TreeStorage) CreateTree(ctx context.Context, name string) (int64, error) {
	s.logger.Info(ctx, "Creating tree", log.Fields{"name": name})

	var id int64
	err := s.storage.tx(ctx, func(txs *Storage) error {
		ts := now()
		res, err := txs.exec.ExecContext(ctx,
			"INSERT INTO trees (name, created_at, updated_at, last_accessed_at) VALUES (?, ?, ?, ?)",
			name, ts, ts, ts)
		if err != nil {
			return fmt.Errorf("failed to insert tree: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get tree id: %w", err)
		}
		if _, err := txs.CreateNode(ctx, id, nil, name, 0); err != nil {
			return fmt.Errorf("failed to create root node: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "Failed to create tree", log.Fields{"name": name, "error": err})
		return 0, err
	}

	s.logger.Info(ctx, "Tree created successfully", log.Fields{"treeID": id})
	return id, nil
}

// ListTrees returns all trees, most recently accessed first.
func (s *TreeStorage) ListTrees(ctx context.Context) ([]*model.Tree, error) {
	s.logger.Debug(ctx, "Listing trees", nil)

	rows, err := s.storage.exec.QueryContext(ctx,
		"SELECT id, name, created_at, updated_at, last_accessed_at FROM trees ORDER BY last_accessed_at DESC, id DESC")
	if err != nil {
		s.logger.Error(ctx, "Failed to list trees", log.Fields{"error": err})
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	defer rows.Close()

	var trees []*model.Tree
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tree: %w", err)
		}
		trees = append(trees, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trees: %w", err)
	}
	return trees, nil
}

// GetTree returns a single tree or ErrTreeNotFound.
func (s *TreeStorage) GetTree(ctx context.Context, id int64) (*model.Tree, error) {
	row := s.storage.exec.QueryRowContext(ctx,
		"SELECT id, name, created_at, updated_at, last_accessed_at FROM trees WHERE id = ?", id)
	t, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tree %d: %w", id, ErrTreeNotFound)
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to get tree", log.Fields{"treeID": id, "error": err})
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}
	return t, nil
}

// RenameTree changes a tree's name.
func (s *TreeStorage) RenameTree(ctx context.Context, id int64, name string) error {
	s.logger.Info(ctx, "Renaming tree", log.Fields{"treeID": id, "name": name})
	res, err := s.storage.exec.ExecContext(ctx, "UPDATE trees SET name = ?, updated_at = ? WHERE id = ?", name, now(), id)
	if err := checkAffected(res, err, fmt.Errorf("rename tree %d: %w", id, ErrTreeNotFound)); err != nil {
		s.logger.Error(ctx, "Failed to rename tree", log.Fields{"treeID": id, "error": err})
		return err
	}
	return nil
}

// DeleteTree removes a tree; its nodes cascade.
func (s *TreeStorage) DeleteTree(ctx context.Context, id int64) error {
	s.logger.Info(ctx, "Deleting tree", log.Fields{"treeID": id})
	res, err := s.storage.exec.ExecContext(ctx, "DELETE FROM trees WHERE id = ?", id)
	if err := checkAffected(res, err, fmt.Errorf("delete tree %d: %w", id, ErrTreeNotFound)); err != nil {
		s.logger.Error(ctx, "Failed to delete tree", log.Fields{"treeID": id, "error": err})
		return err
	}
	s.logger.Info(ctx, "Tree deleted successfully", log.Fields{"treeID": id})
	return nil
}

// TouchLastAccessed marks a tree as just opened.
func (s *TreeStorage) TouchLastAccessed(ctx context.Context, id int64) error {
	res, err := s.storage.exec.ExecContext(ctx, "UPDATE trees SET last_accessed_at = ? WHERE id = ?", now(), id)
	if err := checkAffected(res, err, fmt.Errorf("touch tree %d: %w", id, ErrTreeNotFound)); err != nil {
		s.logger.Error(ctx, "Failed to update last access", log.Fields{"treeID": id, "error": err})
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTree(r rowScanner) (*model.Tree, error) {
	var t model.Tree
	var created, updated, accessed string
	if err := r.Scan(&t.ID, &t.Name, &created, &updated, &accessed); err != nil {
		return nil, err
	}
	t.CreatedAt = parseTime(created)
	t.UpdatedAt = parseTime(updated)
	t.LastAccessedAt = parseTime(accessed)
	return &t, nil
}

// checkAffected maps a statement that touched no row to notFound.
func checkAffected(res sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
