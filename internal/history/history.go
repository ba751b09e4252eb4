// Package history keeps the linear undo/redo history of an editing session.
package history

import "sync"

// Engine holds the past and future action stacks of one editing session.
// Undo and redo only move actions between the stacks; applying them is the
// caller's job (see Apply and Invert).
type Engine struct {
	mu     sync.Mutex
	past   []Action
	future []Action
	limit  int
}

// NewEngine creates an Engine. A positive limit caps the past stack, dropping
// the oldest actions first.
func NewEngine(limit int) *Engine {
	return &Engine{limit: limit}
}

// Record pushes a new action and discards the redo branch.
func (e *Engine) Record(a Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.past = append(e.past, a)
	if e.limit > 0 && len(e.past) > e.limit {
		e.past = append([]Action(nil), e.past[len(e.past)-e.limit:]...)
	}
	e.future = nil
}

// Undo pops the latest action and moves it to the front of the future stack.
func (e *Engine) Undo() (Action, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.past) == 0 {
		return nil, false
	}
	a := e.past[len(e.past)-1]
	e.past = e.past[:len(e.past)-1]
	e.future = append([]Action{a}, e.future...)
	return a, true
}

// Redo pops the first future action back onto the past stack.
func (e *Engine) Redo() (Action, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.future) == 0 {
		return nil, false
	}
	a := e.future[0]
	e.future = e.future[1:]
	e.past = append(e.past, a)
	return a, true
}

// Clear drops both stacks.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.past = nil
	e.future = nil
}

func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.past) > 0
}

func (e *Engine) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.future) > 0
}

// Past returns a copy of the past stack, oldest first.
func (e *Engine) Past() []Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Action(nil), e.past...)
}

// Future returns a copy of the future stack, next redo first.
func (e *Engine) Future() []Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Action(nil), e.future...)
}

// Remap rewrites node ids in every recorded action. Re-creating a deleted node in
// storage assigns it a new key; remapping keeps older actions pointing at it.
func (e *Engine) Remap(ids map[string]string) {
	if len(ids) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, a := range e.past {
		e.past[i] = a.remap(ids)
	}
	for i, a := range e.future {
		e.future[i] = a.remap(ids)
	}
}
