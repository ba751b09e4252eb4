package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mindtree/local-app/internal/event"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
)

// Export writes the open tree to a file in the given format (json or yaml).
func (e *Editor) Export(ctx context.Context, filename, format string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}

	e.logger.Info(ctx, "Exporting tree", log.Fields{"treeID": e.treeID, "file": filename, "format": format})
	if err := storage.FileExport(e.root, filename, format); err != nil {
		e.logger.Error(ctx, "Failed to export tree", log.Fields{"treeID": e.treeID, "error": err})
		if errors.Is(err, storage.ErrUnsupportedFormat) {
			return fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Encode serializes the open tree.
func (e *Editor) Encode(format string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTree(); err != nil {
		return nil, err
	}
	data, err := storage.EncodeTree(e.root, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return data, nil
}

// Import reads a tree document, stores it as a new tree and opens it. Node ids of
// the document are not kept; the store assigns new ones.
func (e *Editor) Import(ctx context.Context, filename, format string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commitEdit(ctx); err != nil {
		return 0, err
	}

	e.logger.Info(ctx, "Importing tree", log.Fields{"file": filename, "format": format})
	root, err := storage.FileImport(filename, format)
	if err != nil {
		e.logger.Error(ctx, "Failed to import tree", log.Fields{"file": filename, "error": err})
		if errors.Is(err, storage.ErrInvalidDocument) || errors.Is(err, storage.ErrUnsupportedFormat) {
			return 0, fmt.Errorf("%w: %w", ErrValidation, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	name := strings.TrimSpace(root.Text)
	if name == "" {
		name = model.PlaceholderText
	}

	var treeID int64
	err = e.store.Tx(ctx, func(tx storage.Store) error {
		var err error
		if treeID, err = tx.CreateTree(ctx, name); err != nil {
			return err
		}
		rows, err := tx.GetTreeNodes(ctx, treeID)
		if err != nil {
			return err
		}
		rootID := rows[0].ID
		if !root.IsExpanded {
			if err := tx.UpdateNodeExpanded(ctx, rootID, false); err != nil {
				return err
			}
		}
		if root.BackgroundColor != nil {
			if err := tx.UpdateNodeColor(ctx, rootID, root.BackgroundColor); err != nil {
				return err
			}
		}
		ids := make(map[string]string)
		for i, c := range root.Children {
			if err := createSubtree(ctx, tx, treeID, c, &rootID, i, ids); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.logger.Error(ctx, "Failed to store imported tree", log.Fields{"file": filename, "error": err})
		return 0, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.events.Publish(event.Event{Type: event.TreeCreated, Data: event.TreeEvent{TreeID: treeID, Name: name, Source: e.id}})

	if err := e.openTree(ctx, treeID); err != nil {
		return 0, err
	}
	e.logger.Info(ctx, "Tree imported successfully", log.Fields{"treeID": treeID})
	return treeID, nil
}
