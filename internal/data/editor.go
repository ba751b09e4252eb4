package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"mindtree/local-app/internal/contextwin"
	"mindtree/local-app/internal/dragdrop"
	"mindtree/local-app/internal/event"
	"mindtree/local-app/internal/generate"
	"mindtree/local-app/internal/history"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
	"mindtree/local-app/internal/tree"
	"mindtree/local-app/internal/watch"
)

// Editor owns the open tree of one session: the canonical tree, the selection, the
// undo history, the active text edit and the generation preview. Every structural
// change is applied to a copy of the tree, persisted in one transaction, re-read from
// the store and only then swapped in, so the canonical tree always mirrors storage.
type Editor struct {
	mu sync.Mutex

	id       string
	store    storage.Store
	events   *event.EventManager
	gen      generate.Generator
	cfg      *model.Config
	logger   *log.Logger
	history  *history.Engine
	drop     *dragdrop.Resolver
	selector contextwin.Selector

	treeID   int64
	treeName string
	root     *model.Node
	selected string

	edit     *editSession
	editSeq  uint64
	debounce *watch.Debouncer
	preview  *Preview
}

// State is a read-only snapshot of an editor.
type State struct {
	TreeID   int64
	TreeName string
	Root     *model.Node
	Selected string
	EditID   string
	Preview  *Preview
	CanUndo  bool
	CanRedo  bool
}

func newEditor(id string, store storage.Store, events *event.EventManager, gen generate.Generator, cfg *model.Config, logger *log.Logger) *Editor {
	e := &Editor{
		id:       id,
		store:    store,
		events:   events,
		gen:      gen,
		cfg:      cfg,
		logger:   logger,
		history:  history.NewEngine(cfg.HistoryLimit),
		selector: contextwin.Selector{Threshold: cfg.ContextThreshold},
		debounce: watch.NewDebouncer(time.Duration(cfg.EditDebounceMs) * time.Millisecond),
	}
	e.drop = dragdrop.NewResolver(float64(cfg.DropThresholdPx), dragdrop.MoverFunc(e.move))
	return e
}

// TreeID returns the id of the open tree, or 0 when none is open.
func (e *Editor) TreeID() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.treeID
}

// State returns a snapshot of the editor. The tree is a copy.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := State{
		TreeID:   e.treeID,
		TreeName: e.treeName,
		Root:     tree.Clone(e.root),
		Selected: e.selected,
		CanUndo:  e.history.CanUndo(),
		CanRedo:  e.history.CanRedo(),
	}
	if e.edit != nil {
		s.EditID = e.edit.nodeID
	}
	if e.preview != nil {
		p := *e.preview
		p.Nodes = append([]string(nil), e.preview.Nodes...)
		s.Preview = &p
	}
	return s
}

// History returns the undo and redo stacks, oldest first and next first.
func (e *Editor) History() (past, future []history.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.Past(), e.history.Future()
}

// Close commits a pending edit.
func (e *Editor) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.debounce.Cancel()
	return e.commitEdit(ctx)
}

// CreateTree creates a tree whose root carries the name and opens it.
func (e *Editor) CreateTree(ctx context.Context, name string) (*model.Tree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tree name cannot be empty", ErrValidation)
	}
	if err := e.commitEdit(ctx); err != nil {
		return nil, err
	}

	e.logger.Info(ctx, "Creating tree", log.Fields{"name": name})
	id, err := e.store.CreateTree(ctx, name)
	if err != nil {
		e.logger.Error(ctx, "Failed to create tree", log.Fields{"name": name, "error": err})
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.events.Publish(event.Event{Type: event.TreeCreated, Data: event.TreeEvent{TreeID: id, Name: name, Source: e.id}})

	if err := e.openTree(ctx, id); err != nil {
		return nil, err
	}
	e.logger.Info(ctx, "Tree created successfully", log.Fields{"treeID": id})
	return e.store.GetTree(ctx, id)
}

// ListTrees returns all trees, most recently accessed first.
func (e *Editor) ListTrees(ctx context.Context) ([]*model.Tree, error) {
	trees, err := e.store.ListTrees(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return trees, nil
}

// OpenTree loads a tree, marks it as accessed and starts a fresh history.
func (e *Editor) OpenTree(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commitEdit(ctx); err != nil {
		return err
	}
	return e.openTree(ctx, id)
}

// OpenDefault opens the most recently used tree, creating a placeholder tree when
// there is none.
func (e *Editor) OpenDefault(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.commitEdit(ctx); err != nil {
		return err
	}
	return e.openDefault(ctx)
}

func (e *Editor) openDefault(ctx context.Context) error {
	trees, err := e.store.ListTrees(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if len(trees) > 0 {
		return e.openTree(ctx, trees[0].ID)
	}

	name := e.cfg.DefaultTreeName
	if name == "" {
		name = model.PlaceholderText
	}
	id, err := e.store.CreateTree(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.events.Publish(event.Event{Type: event.TreeCreated, Data: event.TreeEvent{TreeID: id, Name: name, Source: e.id}})
	return e.openTree(ctx, id)
}

func (e *Editor) openTree(ctx context.Context, id int64) error {
	e.logger.Info(ctx, "Opening tree", log.Fields{"treeID": id})

	t, err := e.store.GetTree(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrTreeNotFound) {
			return fmt.Errorf("%w: tree %d does not exist", ErrValidation, id)
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := e.store.TouchLastAccessed(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	root, err := e.load(ctx, id)
	if err != nil {
		e.logger.Error(ctx, "Failed to load tree", log.Fields{"treeID": id, "error": err})
		return err
	}

	e.treeID = id
	e.treeName = t.Name
	e.root = root
	e.selected = root.ID
	e.preview = nil
	e.history.Clear()

	e.events.Publish(event.Event{Type: event.TreeSelected, Data: event.TreeEvent{TreeID: id, Name: t.Name, Source: e.id}})
	e.logger.Info(ctx, "Tree opened", log.Fields{"treeID": id, "nodes": tree.Count(root)})
	return nil
}

// RenameTree renames a tree. The root node keeps its text.
func (e *Editor) RenameTree(ctx context.Context, id int64, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tree name cannot be empty", ErrValidation)
	}
	if err := e.store.RenameTree(ctx, id, name); err != nil {
		if errors.Is(err, storage.ErrTreeNotFound) {
			return fmt.Errorf("%w: tree %d does not exist", ErrValidation, id)
		}
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if id == e.treeID {
		e.treeName = name
	}
	e.events.Publish(event.Event{Type: event.TreeRenamed, Data: event.TreeEvent{TreeID: id, Name: name, Source: e.id}})
	return nil
}

// DeleteTree deletes a tree with all its nodes. When it is the open tree the
// editor moves on to the default tree.
func (e *Editor) DeleteTree(ctx context.Context, id int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == e.treeID {
		e.debounce.Cancel()
		e.edit = nil
	}

	e.logger.Info(ctx, "Deleting tree", log.Fields{"treeID": id})
	if err := e.store.DeleteTree(ctx, id); err != nil {
		if errors.Is(err, storage.ErrTreeNotFound) {
			return fmt.Errorf("%w: tree %d does not exist", ErrValidation, id)
		}
		e.logger.Error(ctx, "Failed to delete tree", log.Fields{"treeID": id, "error": err})
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.events.Publish(event.Event{Type: event.TreeDeleted, Data: event.TreeEvent{TreeID: id, Source: e.id}})

	if id == e.treeID {
		e.treeID = 0
		return e.openDefault(ctx)
	}
	e.logger.Info(ctx, "Tree deleted successfully", log.Fields{"treeID": id})
	return nil
}

// Reload re-reads the open tree from the store. It keeps the history and is skipped
// while a text edit is active. A tree deleted elsewhere is replaced by the default tree.
func (e *Editor) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.treeID == 0 || e.edit != nil {
		return nil
	}
	t, err := e.store.GetTree(ctx, e.treeID)
	if errors.Is(err, storage.ErrTreeNotFound) {
		e.logger.Warn(ctx, "Open tree was deleted", log.Fields{"treeID": e.treeID})
		e.treeID = 0
		return e.openDefault(ctx)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	e.treeName = t.Name
	return e.refresh(ctx)
}

// load reads and rebuilds a tree from its rows.
func (e *Editor) load(ctx context.Context, treeID int64) (*model.Node, error) {
	rows, err := e.store.GetTreeNodes(ctx, treeID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	root, err := tree.FromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: tree %d: %w", ErrPersistence, treeID, err)
	}
	return root, nil
}

// refresh swaps in the canonical tree re-read from the store and repairs the selection.
func (e *Editor) refresh(ctx context.Context) error {
	root, err := e.load(ctx, e.treeID)
	if err != nil {
		return err
	}
	e.root = root
	if tree.Find(root, e.selected) == nil {
		e.selected = root.ID
	}
	return nil
}

func (e *Editor) requireTree() error {
	if e.treeID == 0 || e.root == nil {
		return ErrNoTree
	}
	return nil
}

func (e *Editor) publishNodeChanged(nodeID string) {
	e.events.Publish(event.Event{Type: event.NodeChanged, Data: event.NodeEvent{TreeID: e.treeID, NodeID: nodeID, Source: e.id}})
}
