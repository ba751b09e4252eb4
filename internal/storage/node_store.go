package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

// NodeStore defines the interface for node-related storage operations.
type NodeStore interface {
	CreateNode(ctx context.Context, treeID int64, parentID *int64, text string, orderIndex int) (int64, error)
	GetNode(ctx context.Context, id int64) (*model.NodeRow, error)
	GetTreeNodes(ctx context.Context, treeID int64) ([]model.NodeRow, error)
	UpdateNodeText(ctx context.Context, id int64, text string) error
	UpdateNodeColor(ctx context.Context, id int64, color *string) error
	UpdateNodeExpanded(ctx context.Context, id int64, expanded bool) error
	UpdateNodeOrder(ctx context.Context, id int64, orderIndex int) error
	UpdateNodeParent(ctx context.Context, id int64, parentID *int64) error
	DeleteNode(ctx context.Context, id int64) error
}

// NodeStorage implements the NodeStore interface.
type NodeStorage struct {
	storage *Storage
	logger  *log.Logger
}

// NewNodeStorage creates a new NodeStorage instance.
func NewNodeStorage(storage *Storage) *NodeStorage {
	return &NodeStorage{
		storage: storage,
		logger:  storage.logger,
	}
}

const nodeColumns = "id, tree_id, parent_id, text, order_index, is_expanded, background_color, created_at, updated_at"

// CreateNode inserts a node and returns its id. A nil parent makes it the root.
func (s *NodeStorage) CreateNode(ctx context.Context, treeID int64, parentID *int64, text string, orderIndex int) (int64, error) {
	s.logger.Info(ctx, "Adding new node", log.Fields{
		"treeID":     treeID,
		"parentID":   nullable(parentID),
		"orderIndex": orderIndex,
	})

	ts := now()
	res, err := s.storage.exec.ExecContext(ctx,
		"INSERT INTO nodes (tree_id, parent_id, text, order_index, is_expanded, created_at, updated_at) VALUES (?, ?, ?, ?, 1, ?, ?)",
		treeID, nullable(parentID), text, orderIndex, ts, ts)
	if err != nil {
		s.logger.Error(ctx, "Failed to add node", log.Fields{"error": err, "treeID": treeID})
		return 0, fmt.Errorf("failed to add node: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		s.logger.Error(ctx, "Failed to get last insert ID", log.Fields{"error": err})
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}

	s.logger.Info(ctx, "Node added successfully", log.Fields{"treeID": treeID, "nodeID": id})
	return id, nil
}

// GetNode returns a single row or ErrNodeNotFound.
func (s *NodeStorage) GetNode(ctx context.Context, id int64) (*model.NodeRow, error) {
	row := s.storage.exec.QueryRowContext(ctx, "SELECT "+nodeColumns+" FROM nodes WHERE id = ?", id)
	r, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get node %d: %w", id, ErrNodeNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return r, nil
}

// GetTreeNodes returns the flat rows of a tree, root first, then by parent and order.
func (s *NodeStorage) GetTreeNodes(ctx context.Context, treeID int64) ([]model.NodeRow, error) {
	s.logger.Debug(ctx, "Retrieving nodes", log.Fields{"treeID": treeID})

	rows, err := s.storage.exec.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE tree_id = ? ORDER BY parent_id IS NOT NULL, parent_id, order_index, id", treeID)
	if err != nil {
		s.logger.Error(ctx, "Failed to retrieve nodes", log.Fields{"error": err, "treeID": treeID})
		return nil, fmt.Errorf("failed to retrieve nodes: %w", err)
	}
	defer rows.Close()

	var out []model.NodeRow
	for rows.Next() {
		r, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate nodes: %w", err)
	}

	s.logger.Debug(ctx, "Nodes retrieved", log.Fields{"treeID": treeID, "count": len(out)})
	return out, nil
}

func (s *NodeStorage) UpdateNodeText(ctx context.Context, id int64, text string) error {
	return s.update(ctx, id, "text", text)
}

// UpdateNodeColor sets or, with nil, clears the background color.
func (s *NodeStorage) UpdateNodeColor(ctx context.Context, id int64, color *string) error {
	var v interface{}
	if color != nil {
		v = *color
	}
	return s.update(ctx, id, "background_color", v)
}

func (s *NodeStorage) UpdateNodeExpanded(ctx context.Context, id int64, expanded bool) error {
	v := 0
	if expanded {
		v = 1
	}
	return s.update(ctx, id, "is_expanded", v)
}

func (s *NodeStorage) UpdateNodeOrder(ctx context.Context, id int64, orderIndex int) error {
	return s.update(ctx, id, "order_index", orderIndex)
}

func (s *NodeStorage) UpdateNodeParent(ctx context.Context, id int64, parentID *int64) error {
	return s.update(ctx, id, "parent_id", nullable(parentID))
}

// update sets one column; column is always one of the constants above
func (s *NodeStorage) update(ctx context.Context, id int64, column string, value interface{}) error {
	s.logger.Info(ctx, "Updating node", log.Fields{"nodeID": id, "column": column})

	res, err := s.storage.exec.ExecContext(ctx,
		"UPDATE nodes SET "+column+" = ?, updated_at = ? WHERE id = ?", value, now(), id)
	if err := checkAffected(res, err, fmt.Errorf("update node %d: %w", id, ErrNodeNotFound)); err != nil {
		s.logger.Error(ctx, "Failed to update node", log.Fields{"nodeID": id, "column": column, "error": err})
		return fmt.Errorf("failed to update node %s: %w", column, err)
	}

	s.logger.Info(ctx, "Node updated successfully", log.Fields{"nodeID": id, "column": column})
	return nil
}

// DeleteNode removes a node; descendants and its prompt cascade.
func (s *NodeStorage) DeleteNode(ctx context.Context, id int64) error {
	s.logger.Info(ctx, "Deleting node", log.Fields{"nodeID": id})

	res, err := s.storage.exec.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id)
	if err := checkAffected(res, err, fmt.Errorf("delete node %d: %w", id, ErrNodeNotFound)); err != nil {
		s.logger.Error(ctx, "Failed to delete node", log.Fields{"nodeID": id, "error": err})
		return fmt.Errorf("failed to delete node: %w", err)
	}

	s.logger.Info(ctx, "Node deleted successfully", log.Fields{"nodeID": id})
	return nil
}

func scanNode(r rowScanner) (*model.NodeRow, error) {
	var (
		n                model.NodeRow
		parent           sql.NullInt64
		color            sql.NullString
		created, updated string
	)
	if err := r.Scan(&n.ID, &n.TreeID, &parent, &n.Text, &n.OrderIndex, &n.IsExpanded, &color, &created, &updated); err != nil {
		return nil, err
	}
	if parent.Valid {
		p := parent.Int64
		n.ParentID = &p
	}
	if color.Valid {
		c := color.String
		n.BackgroundColor = &c
	}
	n.CreatedAt = parseTime(created)
	n.UpdatedAt = parseTime(updated)
	return &n, nil
}

func nullable(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
