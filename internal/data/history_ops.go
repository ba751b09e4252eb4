package data

import (
	"context"

	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/log"
)

// Undo reverts the most recent recorded action. It returns false when there is nothing
// to undo or the action no longer applies because its nodes are gone.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return false, err
	}

	a, ok := e.history.Undo()
	if !ok {
		return false, nil
	}
	return e.replay(ctx, a, true)
}

// Redo re-applies the most recently undone action.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.prepare(ctx); err != nil {
		return false, err
	}

	a, ok := e.history.Redo()
	if !ok {
		return false, nil
	}
	return e.replay(ctx, a, false)
}

func (e *Editor) replay(ctx context.Context, a history.Action, inverse bool) (bool, error) {
	op := "redo"
	if inverse {
		op = "undo"
	}
	// a skipped action is dropped; kept on either stack it would block every later step
	if !applicable(e.root, a, inverse) {
		e.logger.Warn(ctx, "Skipping history action whose nodes are gone", log.Fields{"op": op, "action": a.String()})
		return false, nil
	}

	e.logger.Info(ctx, "Replaying history", log.Fields{"op": op, "action": a.String()})
	ids, err := e.perform(ctx, a, inverse)
	if err != nil {
		// put the action back where it was so the step can be retried
		if inverse {
			e.history.Redo()
		} else {
			e.history.Undo()
		}
		return false, err
	}
	e.history.Remap(ids)

	target := history.Target(a)
	if id, ok := ids[target]; ok {
		target = id
	}
	e.publishNodeChanged(target)
	return true, nil
}
