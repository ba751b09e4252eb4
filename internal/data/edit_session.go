package data

import (
	"context"
	"fmt"
	"strings"

	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/tree"
)

// editSession is the text edit in progress on one node. A transient session edits a
// node that is not persisted yet and is created on commit.
type editSession struct {
	seq       uint64
	nodeID    string
	original  string
	buffer    string
	transient bool
	drafted   bool
}

// BeginEdit starts editing the text of an existing node. An edit already active on
// another node is committed first.
func (e *Editor) BeginEdit(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireTree(); err != nil {
		return err
	}
	if e.edit != nil && e.edit.nodeID == id {
		return nil
	}
	if err := e.commitEdit(ctx); err != nil {
		return err
	}

	n := tree.Find(e.root, id)
	if n == nil {
		return fmt.Errorf("%w: node %s does not exist", ErrValidation, id)
	}
	e.startEdit(n, false)
	e.selected = id
	return nil
}

// BeginCompose inserts an empty unsaved node next to anchorID, or as its last child,
// and starts editing it. It returns the transient id, or "" when the anchor is missing
// or a sibling of the root was requested.
func (e *Editor) BeginCompose(ctx context.Context, anchorID string, asChild bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return "", err
	}

	n := tree.Transient("")
	var next *model.Node
	if asChild {
		if tree.Find(e.root, anchorID) == nil {
			return "", nil
		}
		if err := e.expand(ctx, anchorID); err != nil {
			return "", err
		}
		next = tree.InsertChild(e.root, anchorID, n)
	} else {
		parentID, _, ok := tree.Locate(e.root, anchorID)
		if !ok || parentID == "" {
			return "", nil
		}
		next = tree.InsertSibling(e.root, anchorID, n)
	}

	e.root = next
	e.startEdit(n, true)
	e.selected = n.ID
	return n.ID, nil
}

func (e *Editor) startEdit(n *model.Node, transient bool) {
	e.editSeq++
	e.edit = &editSession{
		seq:       e.editSeq,
		nodeID:    n.ID,
		original:  n.Text,
		buffer:    n.Text,
		transient: transient,
	}
}

// Type replaces the edit buffer. The text shows in the tree immediately; for persisted
// nodes a draft write is scheduled once typing pauses.
func (e *Editor) Type(text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.edit
	if s == nil {
		return fmt.Errorf("%w: no edit in progress", ErrValidation)
	}

	s.buffer = text
	e.root = tree.Rename(e.root, s.nodeID, text)

	if s.transient || strings.TrimSpace(text) == "" {
		e.debounce.Cancel()
		return nil
	}
	seq := s.seq
	e.debounce.Trigger(func() { e.writeDraft(seq, text) })
	return nil
}

// writeDraft persists the buffer of edit seq, unless that edit has ended since.
func (e *Editor) writeDraft(seq uint64, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ctx := context.Background()

	s := e.edit
	if s == nil || s.seq != seq {
		e.logger.Debug(ctx, "Discarding stale draft", log.Fields{"seq": seq})
		return
	}
	id, err := tree.ParseID(s.nodeID)
	if err != nil {
		return
	}
	if err := e.store.UpdateNodeText(ctx, id, strings.TrimSpace(text)); err != nil {
		e.logger.Error(ctx, "Failed to save draft", log.Fields{"nodeID": s.nodeID, "error": err})
		return
	}
	s.drafted = true
	e.logger.Debug(ctx, "Draft saved", log.Fields{"nodeID": s.nodeID})
}

// CommitEdit ends the active edit. Non-empty text renames the node, or creates it when
// it was composed; empty text deletes it, except on the root which falls back to the
// placeholder text.
func (e *Editor) CommitEdit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commitEdit(ctx)
}

func (e *Editor) commitEdit(ctx context.Context) error {
	s := e.edit
	if s == nil {
		return nil
	}
	e.edit = nil
	e.debounce.Cancel()

	text := strings.TrimSpace(s.buffer)
	e.logger.Debug(ctx, "Committing edit", log.Fields{"nodeID": s.nodeID, "transient": s.transient})

	if s.transient {
		parentID, index, ok := tree.Locate(e.root, s.nodeID)
		e.root, _ = tree.DeleteSubtree(e.root, s.nodeID)
		if !ok || text == "" {
			e.selected = parentID
			if e.selected == "" {
				e.selected = e.root.ID
			}
			return nil
		}
		id, err := e.addNode(ctx, parentID, index, text)
		if err != nil {
			e.selected = parentID
		} else {
			e.selected = id
		}
		return err
	}

	// restore the persisted text in memory; the operations below work from it
	e.root = tree.Rename(e.root, s.nodeID, s.original)
	isRoot := e.root.ID == s.nodeID

	switch {
	case text == "" && isRoot:
		text = model.PlaceholderText
	case text == "":
		return e.delete(ctx, s.nodeID)
	}

	if text == s.original {
		if !s.drafted {
			return nil
		}
		// a draft may have stored something else
		id, err := tree.ParseID(s.nodeID)
		if err != nil {
			return err
		}
		if err := e.store.UpdateNodeText(ctx, id, text); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistence, err)
		}
		return nil
	}

	_, err := e.do(ctx, history.EditNode{NodeID: s.nodeID, OldText: s.original, NewText: text})
	return err
}

// CancelEdit ends the active edit without applying it. A composed node disappears and
// drafts are reverted.
func (e *Editor) CancelEdit(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.edit
	if s == nil {
		return nil
	}
	e.edit = nil
	e.debounce.Cancel()

	if s.transient {
		parentID, _, _ := tree.Locate(e.root, s.nodeID)
		e.root, _ = tree.DeleteSubtree(e.root, s.nodeID)
		e.selected = parentID
		if e.selected == "" {
			e.selected = e.root.ID
		}
		return nil
	}

	e.root = tree.Rename(e.root, s.nodeID, s.original)
	if !s.drafted {
		return nil
	}
	id, err := tree.ParseID(s.nodeID)
	if err != nil {
		return err
	}
	if err := e.store.UpdateNodeText(ctx, id, s.original); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Editing returns the node and buffer of the active edit.
func (e *Editor) Editing() (nodeID, buffer string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.edit == nil {
		return "", "", false
	}
	return e.edit.nodeID, e.edit.buffer, true
}
