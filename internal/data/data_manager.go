// Package data provides data management functionality for mindtree.
// It coordinates the editors of all sessions over a shared store.
package data

import (
	"context"
	"fmt"
	"sync"

	"mindtree/local-app/internal/event"
	"mindtree/local-app/internal/generate"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
)

// DataManager is the main struct that coordinates all data operations
type DataManager struct {
	Store        storage.Store
	EventManager *event.EventManager
	Generator    generate.Generator
	Config       *model.Config
	Logger       *log.Logger

	mu      sync.Mutex
	editors map[string]*Editor
}

// NewDataManager creates a new DataManager instance. gen may be nil, in which case
// generation requests fail with ErrGeneration.
func NewDataManager(store storage.Store, gen generate.Generator, cfg *model.Config, logger *log.Logger) (*DataManager, error) {
	if store == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}

	m := &DataManager{
		Store:        store,
		EventManager: event.NewEventManager(logger),
		Generator:    gen,
		Config:       cfg,
		Logger:       logger,
		editors:      make(map[string]*Editor),
	}

	// Editors sharing a tree follow each other's changes
	m.EventManager.Subscribe(event.NodeChanged, m.handleNodeChanged)
	m.EventManager.Subscribe(event.RootNodeRenamed, m.handleNodeChanged)
	m.EventManager.Subscribe(event.TreeRenamed, m.handleTreeChanged)
	m.EventManager.Subscribe(event.TreeDeleted, m.handleTreeChanged)

	return m, nil
}

// NewEditor creates the editor of a session and opens the default tree in it.
func (m *DataManager) NewEditor(ctx context.Context, sessionID string) (*Editor, error) {
	e := newEditor(sessionID, m.Store, m.EventManager, m.Generator, m.Config, m.Logger)
	if err := e.OpenDefault(ctx); err != nil {
		return nil, fmt.Errorf("failed to open default tree: %w", err)
	}

	m.mu.Lock()
	m.editors[sessionID] = e
	m.mu.Unlock()

	m.Logger.Info(ctx, "Editor created", log.Fields{"session": sessionID, "treeID": e.TreeID()})
	return e, nil
}

// CloseEditor commits any pending edit of the session's editor and forgets it.
func (m *DataManager) CloseEditor(ctx context.Context, sessionID string) {
	m.mu.Lock()
	e, ok := m.editors[sessionID]
	delete(m.editors, sessionID)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := e.Close(ctx); err != nil {
		m.Logger.Error(ctx, "Failed to close editor", log.Fields{"session": sessionID, "error": err})
	}
}

// ReloadAll re-reads the open tree of every editor. It is called when the database
// changes outside this process.
func (m *DataManager) ReloadAll(ctx context.Context) {
	for _, e := range m.snapshot() {
		if err := e.Reload(ctx); err != nil {
			m.Logger.Error(ctx, "Failed to reload editor", log.Fields{"session": e.id, "error": err})
		}
	}
}

func (m *DataManager) snapshot() []*Editor {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Editor, 0, len(m.editors))
	for _, e := range m.editors {
		out = append(out, e)
	}
	return out
}

// reloadOthers reloads every editor other than source that has treeID open.
func (m *DataManager) reloadOthers(treeID int64, source string) {
	ctx := context.Background()
	for _, e := range m.snapshot() {
		if e.id == source || e.TreeID() != treeID {
			continue
		}
		if err := e.Reload(ctx); err != nil {
			m.Logger.Error(ctx, "Failed to follow tree change", log.Fields{"session": e.id, "treeID": treeID, "error": err})
		}
	}
}

// handleNodeChanged refreshes other editors after a node of their tree changed
func (m *DataManager) handleNodeChanged(e event.Event) {
	data, ok := e.Data.(event.NodeEvent)
	if !ok {
		m.Logger.Error(context.Background(), "Invalid event data", log.Fields{"event": e.Type.String()})
		return
	}
	m.reloadOthers(data.TreeID, data.Source)
}

// handleTreeChanged refreshes other editors after their tree was renamed or deleted
func (m *DataManager) handleTreeChanged(e event.Event) {
	data, ok := e.Data.(event.TreeEvent)
	if !ok {
		m.Logger.Error(context.Background(), "Invalid event data", log.Fields{"event": e.Type.String()})
		return
	}
	m.reloadOthers(data.TreeID, data.Source)
}
