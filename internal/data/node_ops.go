package data

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"mindtree/local-app/internal/dragdrop"
	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

// do performs a new action, records it and publishes the change. It returns the
// persisted ids of created nodes.
func (e *Editor) do(ctx context.Context, a history.Action) (map[string]string, error) {
	ids, err := e.perform(ctx, a, false)
	if err != nil {
		return nil, err
	}
	if d, ok := a.(history.DeleteNode); ok && d.ParentID == "" {
		d.ReplacementID = ids[tree.PlaceholderID]
		a = d
	}
	e.history.Record(a)
	e.history.Remap(ids)

	target := history.Target(a)
	if id, ok := ids[target]; ok {
		target = id
	}
	e.publishNodeChanged(target)
	e.logger.Info(ctx, "Node change recorded", log.Fields{"action": a.String()})
	return ids, nil
}

// AddChild appends a node with text as the last child of parentID and selects it.
// It returns the new node id, or "" when the parent does not exist.
func (e *Editor) AddChild(ctx context.Context, parentID, text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return "", err
	}

	parent := tree.Find(e.root, parentID)
	if parent == nil {
		return "", nil
	}
	return e.addNode(ctx, parentID, len(parent.Children), text)
}

// AddSibling inserts a node with text right after siblingID and selects it. The root
// has no siblings: adding one is a no-op returning "".
func (e *Editor) AddSibling(ctx context.Context, siblingID, text string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return "", err
	}

	parentID, index, ok := tree.Locate(e.root, siblingID)
	if !ok || parentID == "" {
		return "", nil
	}
	return e.addNode(ctx, parentID, index+1, text)
}

func (e *Editor) addNode(ctx context.Context, parentID string, index int, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: node text cannot be empty", ErrValidation)
	}

	n := tree.Transient(text)
	next := tree.InsertAt(e.root, parentID, index, n)
	a := history.AddNode{
		Node:          n,
		ParentID:      parentID,
		PrevSiblingID: tree.PrevSiblingID(next, n.ID),
		Index:         index,
	}
	ids, err := e.do(ctx, a)
	if err != nil {
		return "", err
	}
	if err := e.expand(ctx, parentID); err != nil {
		return "", err
	}

	id := ids[n.ID]
	e.selected = id
	return id, nil
}

// expand opens a collapsed node so that a node added under it is visible.
func (e *Editor) expand(ctx context.Context, id string) error {
	n := tree.Find(e.root, id)
	if n == nil || n.IsExpanded {
		return nil
	}
	return e.setExpanded(ctx, id, true)
}

// Rename replaces the text of a node. Renaming the root renames the tree.
func (e *Editor) Rename(ctx context.Context, id, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}
	return e.rename(ctx, id, text)
}

func (e *Editor) rename(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: node text cannot be empty", ErrValidation)
	}
	n := tree.Find(e.root, id)
	if n == nil || n.Text == text {
		return nil
	}
	_, err := e.do(ctx, history.EditNode{NodeID: id, OldText: n.Text, NewText: text})
	return err
}

// Recolor sets the background color of a node to a palette color, or clears it when
// color is nil.
func (e *Editor) Recolor(ctx context.Context, id string, color *string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}
	if color != nil && !slices.Contains(model.Palette, *color) {
		return fmt.Errorf("%w: %q is not a palette color", ErrValidation, *color)
	}

	n := tree.Find(e.root, id)
	if n == nil || sameColor(n.BackgroundColor, color) {
		return nil
	}
	var old *string
	if n.BackgroundColor != nil {
		c := *n.BackgroundColor
		old = &c
	}
	_, err := e.do(ctx, history.ChangeColor{NodeID: id, OldColor: old, NewColor: color})
	return err
}

func sameColor(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// SetExpanded shows or hides the children of a node. It is not recorded in history.
func (e *Editor) SetExpanded(ctx context.Context, id string, expanded bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}
	n := tree.Find(e.root, id)
	if n == nil || n.IsExpanded == expanded {
		return nil
	}
	return e.setExpanded(ctx, id, expanded)
}

// ToggleExpanded flips the expansion of a node.
func (e *Editor) ToggleExpanded(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}
	n := tree.Find(e.root, id)
	if n == nil {
		return nil
	}
	return e.setExpanded(ctx, id, !n.IsExpanded)
}

func (e *Editor) setExpanded(ctx context.Context, id string, expanded bool) error {
	nodeID, err := tree.ParseID(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := e.store.UpdateNodeExpanded(ctx, nodeID, expanded); err != nil {
		e.logger.Error(ctx, "Failed to update node expansion", log.Fields{"nodeID": id, "error": err})
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := e.refresh(ctx); err != nil {
		return err
	}
	e.publishNodeChanged(id)
	return nil
}

// Delete removes a node and its subtree. Deleting the root resets the tree to a single
// placeholder root.
func (e *Editor) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}
	return e.delete(ctx, id)
}

func (e *Editor) delete(ctx context.Context, id string) error {
	n := tree.Find(e.root, id)
	if n == nil {
		return nil
	}

	e.logger.Info(ctx, "Deleting node", log.Fields{"nodeID": id, "nodes": tree.Count(n)})
	a := history.DeleteNode{Node: tree.Clone(n)}
	if n != e.root {
		a.ParentID, a.Index, _ = tree.Locate(e.root, id)
		a.PrevSiblingID = tree.PrevSiblingID(e.root, id)
	}
	if tree.Find(n, e.selected) != nil {
		e.selected = a.ParentID
	}
	_, err := e.do(ctx, a)
	return err
}

// Move moves sourceID relative to targetID. Invalid moves are no-ops.
func (e *Editor) Move(ctx context.Context, sourceID, targetID string, pos model.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return err
	}
	return e.move(ctx, sourceID, targetID, pos)
}

// move is also the drop target of the dragdrop resolver; the caller holds the lock.
func (e *Editor) move(ctx context.Context, sourceID, targetID string, pos model.Position) error {
	if !dragdrop.ValidateDrop(e.root, sourceID, targetID) {
		return nil
	}
	source := tree.Find(e.root, sourceID)
	if source == nil {
		return nil
	}

	next := tree.Move(e.root, sourceID, targetID, pos)
	oldParent, oldIndex, _ := tree.Locate(e.root, sourceID)
	newParent, newIndex, ok := tree.Locate(next, sourceID)
	if !ok || newParent == "" || (oldParent == newParent && oldIndex == newIndex) {
		return nil
	}

	_, err := e.do(ctx, history.MoveNode{
		Node:             tree.Clone(source),
		OldParentID:      oldParent,
		OldPrevSiblingID: tree.PrevSiblingID(e.root, sourceID),
		OldIndex:         oldIndex,
		NewParentID:      newParent,
		NewIndex:         newIndex,
	})
	return err
}

// Drop resolves a drop of sourceID at a vertical offset within the target row of the
// given height and moves the node. It reports whether a move was attempted.
func (e *Editor) Drop(ctx context.Context, sourceID, targetID string, offset, height float64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return false, err
	}
	return e.drop.Drop(ctx, e.root, sourceID, targetID, offset, height)
}

// Select makes id the current node.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if tree.Find(e.root, id) == nil {
		return fmt.Errorf("%w: node %s does not exist", ErrValidation, id)
	}
	e.selected = id
	return nil
}

// Search fuzzy-matches node texts of the open tree.
func (e *Editor) Search(query string) []tree.Match {
	e.mu.Lock()
	defer e.mu.Unlock()
	return tree.Search(e.root, query)
}

// Context returns the outline sent along with a generation request for id.
func (e *Editor) Context(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selector.Build(e.root, id)
}

// Prompt returns the saved generation prompt of a node.
func (e *Editor) Prompt(ctx context.Context, id string) (string, error) {
	nodeID, err := tree.ParseID(id)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrValidation, err)
	}
	prompt, err := e.store.GetNodePrompt(ctx, nodeID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return prompt, nil
}

// SavePrompt stores the generation prompt of a node.
func (e *Editor) SavePrompt(ctx context.Context, id, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrValidation)
	}
	nodeID, err := tree.ParseID(id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if err := e.store.UpsertNodePrompt(ctx, nodeID, prompt); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// prepare checks that a tree is open and commits any active text edit, which must
// land before another mutation starts.
func (e *Editor) prepare(ctx context.Context) error {
	if err := e.requireTree(); err != nil {
		return err
	}
	return e.commitEdit(ctx)
}
