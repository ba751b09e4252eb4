package data

import (
	"context"
	"fmt"

	"mindtree/local-app/internal/event"
	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
	"mindtree/local-app/internal/tree"
)

// perform applies an action, or its inverse, to the canonical tree. The change is
// written in one transaction and the tree is re-read afterwards. The returned map
// gives the persisted ids of nodes the action had to create.
func (e *Editor) perform(ctx context.Context, a history.Action, inverse bool) (map[string]string, error) {
	var next *model.Node
	if inverse {
		next = history.Invert(e.root, a)
	} else {
		next = history.Apply(e.root, a)
	}

	renamesRoot := touchesRoot(e.root, a)
	ids := make(map[string]string)
	err := e.store.Tx(ctx, func(tx storage.Store) error {
		return e.persist(ctx, tx, a, inverse, next, ids)
	})
	if err != nil {
		e.logger.Error(ctx, "Failed to persist change", log.Fields{"action": a.String(), "undo": inverse, "error": err})
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := e.refresh(ctx); err != nil {
		return nil, err
	}
	if renamesRoot {
		e.treeName = e.root.Text
		e.events.Publish(event.Event{Type: event.RootNodeRenamed, Data: event.NodeEvent{TreeID: e.treeID, NodeID: e.root.ID, Source: e.id}})
	}
	return ids, nil
}

// touchesRoot reports whether a changes the root text and with it the tree name.
func touchesRoot(root *model.Node, a history.Action) bool {
	switch a := a.(type) {
	case history.EditNode:
		return a.NodeID == root.ID
	case history.DeleteNode:
		return a.ParentID == ""
	}
	return false
}

func (e *Editor) persist(ctx context.Context, tx storage.Store, a history.Action, inverse bool, next *model.Node, ids map[string]string) error {
	switch a := a.(type) {
	case history.AddNode:
		if inverse {
			return e.removeSubtree(ctx, tx, a.Node.ID, a.ParentID, next, ids)
		}
		return e.insertSubtree(ctx, tx, a.Node, a.ParentID, a.Index, next, ids)

	case history.DeleteNode:
		if a.ParentID == "" {
			if inverse {
				return e.replaceRoot(ctx, tx, a.Node, ids)
			}
			if err := e.replaceRoot(ctx, tx, tree.Placeholder(), ids); err != nil {
				return err
			}
			// later actions refer to the placeholder by the id it had when first created
			if a.ReplacementID != "" {
				ids[a.ReplacementID] = ids[tree.PlaceholderID]
			}
			return nil
		}
		if inverse {
			return e.insertSubtree(ctx, tx, a.Node, a.ParentID, a.Index, next, ids)
		}
		return e.removeSubtree(ctx, tx, a.Node.ID, a.ParentID, next, ids)

	case history.EditNode:
		text := a.NewText
		if inverse {
			text = a.OldText
		}
		return e.writeText(ctx, tx, a.NodeID, text)

	case history.MoveNode:
		parentID := a.NewParentID
		if inverse {
			parentID = a.OldParentID
		}
		id, err := tree.ParseID(a.Node.ID)
		if err != nil {
			return err
		}
		pid, err := tree.ParseID(parentID)
		if err != nil {
			return err
		}
		if err := tx.UpdateNodeParent(ctx, id, &pid); err != nil {
			return err
		}
		return writeOrder(ctx, tx, next, ids, a.OldParentID, a.NewParentID)

	case history.ChangeColor:
		color := a.NewColor
		if inverse {
			color = a.OldColor
		}
		id, err := tree.ParseID(a.NodeID)
		if err != nil {
			return err
		}
		return tx.UpdateNodeColor(ctx, id, color)
	}
	return fmt.Errorf("unknown action %T", a)
}

// writeText renames a node. The tree name follows the root text.
func (e *Editor) writeText(ctx context.Context, tx storage.Store, nodeID, text string) error {
	id, err := tree.ParseID(nodeID)
	if err != nil {
		return err
	}
	if err := tx.UpdateNodeText(ctx, id, text); err != nil {
		return err
	}
	if e.root != nil && e.root.ID == nodeID {
		return tx.RenameTree(ctx, e.treeID, text)
	}
	return nil
}

// insertSubtree creates n and its descendants under parentID and rewrites the order of
// the new siblings as they appear in next.
func (e *Editor) insertSubtree(ctx context.Context, tx storage.Store, n *model.Node, parentID string, index int, next *model.Node, ids map[string]string) error {
	pid, err := tree.ParseID(parentID)
	if err != nil {
		return err
	}
	if err := createSubtree(ctx, tx, e.treeID, n, &pid, index, ids); err != nil {
		return err
	}
	return writeOrder(ctx, tx, next, ids, parentID)
}

// removeSubtree deletes a node. The store cascades to its descendants.
func (e *Editor) removeSubtree(ctx context.Context, tx storage.Store, nodeID, parentID string, next *model.Node, ids map[string]string) error {
	id, err := tree.ParseID(nodeID)
	if err != nil {
		return err
	}
	if err := tx.DeleteNode(ctx, id); err != nil {
		return err
	}
	return writeOrder(ctx, tx, next, ids, parentID)
}

// replaceRoot deletes the whole tree content and writes root in its place.
func (e *Editor) replaceRoot(ctx context.Context, tx storage.Store, root *model.Node, ids map[string]string) error {
	current, err := tree.ParseID(e.root.ID)
	if err != nil {
		return err
	}
	if err := tx.DeleteNode(ctx, current); err != nil {
		return err
	}
	if err := createSubtree(ctx, tx, e.treeID, root, nil, 0, ids); err != nil {
		return err
	}
	return tx.RenameTree(ctx, e.treeID, root.Text)
}

// createSubtree inserts n at index under parentID, then its children in order,
// recording the id each node received.
func createSubtree(ctx context.Context, tx storage.Store, treeID int64, n *model.Node, parentID *int64, index int, ids map[string]string) error {
	id, err := tx.CreateNode(ctx, treeID, parentID, n.Text, index)
	if err != nil {
		return err
	}
	ids[n.ID] = tree.FormatID(id)

	if !n.IsExpanded {
		if err := tx.UpdateNodeExpanded(ctx, id, false); err != nil {
			return err
		}
	}
	if n.BackgroundColor != nil {
		if err := tx.UpdateNodeColor(ctx, id, n.BackgroundColor); err != nil {
			return err
		}
	}
	for i, c := range n.Children {
		if err := createSubtree(ctx, tx, treeID, c, &id, i, ids); err != nil {
			return err
		}
	}
	return nil
}

// writeOrder stores the sibling index of every child of the given parents as laid out
// in next. Ids created in this transaction are translated through ids.
func writeOrder(ctx context.Context, tx storage.Store, next *model.Node, ids map[string]string, parentIDs ...string) error {
	seen := make(map[string]bool)
	for _, parentID := range parentIDs {
		if parentID == "" || seen[parentID] {
			continue
		}
		seen[parentID] = true

		parent := tree.Find(next, parentID)
		if parent == nil {
			continue
		}
		for i, c := range parent.Children {
			childID := c.ID
			if mapped, ok := ids[childID]; ok {
				childID = mapped
			}
			id, err := tree.ParseID(childID)
			if err != nil {
				return err
			}
			if err := tx.UpdateNodeOrder(ctx, id, i); err != nil {
				return err
			}
		}
	}
	return nil
}

// applicable reports whether the nodes an action touches are still present, so that
// history replay never resurrects or moves nodes removed by someone else.
func applicable(root *model.Node, a history.Action, inverse bool) bool {
	has := func(id string) bool { return tree.Find(root, id) != nil }

	switch a := a.(type) {
	case history.AddNode:
		if inverse {
			return has(a.Node.ID) && root.ID != a.Node.ID
		}
		return has(a.ParentID) && !has(a.Node.ID)
	case history.DeleteNode:
		if inverse {
			return a.ParentID == "" || (has(a.ParentID) && !has(a.Node.ID))
		}
		return has(a.Node.ID)
	case history.EditNode:
		return has(a.NodeID)
	case history.ChangeColor:
		return has(a.NodeID)
	case history.MoveNode:
		dest := a.NewParentID
		if inverse {
			dest = a.OldParentID
		}
		return has(a.Node.ID) && has(dest) && a.Node.ID != dest && !tree.IsDescendant(root, a.Node.ID, dest)
	}
	return false
}
