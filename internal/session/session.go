package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

// CommandHandler is a function type for command handlers
type CommandHandler func(context.Context, *Session, model.Command) (*model.CommandResult, error)

// Session represents an individual front-end session and the editor it drives
type Session struct {
	ID              string
	Editor          *data.Editor
	mu              sync.Mutex
	lastActivity    time.Time
	commandHandlers map[string]map[string]CommandHandler
	logger          *log.Logger
}

// NewSession creates a new Session instance
func NewSession(id string, editor *data.Editor, logger *log.Logger) *Session {
	ctx := log.WithSession(context.Background(), id)
	logger.Info(ctx, "Creating new Session", nil)

	s := &Session{
		ID:           id,
		Editor:       editor,
		lastActivity: time.Now(),
		logger:       logger,
	}
	s.initCommandHandlers()
	return s
}

// initCommandHandlers initializes the command handlers map
func (s *Session) initCommandHandlers() {
	s.commandHandlers = map[string]map[string]CommandHandler{
		"tree":    initTreeCommandHandlers(),
		"node":    initNodeCommandHandlers(),
		"edit":    initEditCommandHandlers(),
		"history": initHistoryCommandHandlers(),
		"gen":     initGenCommandHandlers(),
		"system":  initSystemCommandHandlers(),
	}
}

// LastActivity returns when the session last ran a command
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// CommandRun validates and executes a command within the session context
func (s *Session) CommandRun(ctx context.Context, cmd model.Command) (*model.CommandResult, error) {
	s.logger.Debug(ctx, "Running command", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation})

	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()

	c := NewCommand(cmd, s.logger)
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	handler, ok := s.commandHandlers[cmd.Scope][cmd.Operation]
	if !ok {
		s.logger.Error(ctx, "No handler for command", log.Fields{"scope": cmd.Scope, "operation": cmd.Operation})
		return nil, fmt.Errorf("invalid command: %s %s", cmd.Scope, cmd.Operation)
	}

	result, err := handler(ctx, s, cmd)
	if err != nil {
		s.logger.Error(ctx, "Command execution failed", log.Fields{"error": err})
		return nil, err
	}
	return result, nil
}

// view wraps a message with the current state of the open tree
func (s *Session) view(msg string) *model.CommandResult {
	st := s.Editor.State()
	return &model.CommandResult{
		Message:  msg,
		TreeName: st.TreeName,
		Tree:     st.Root,
		Selected: st.Selected,
		EditID:   st.EditID,
	}
}

// resolveNode maps a node argument to an id: "." is the selected node and "root" is
// the root of the open tree. Anything else is taken as an id.
func (s *Session) resolveNode(arg string) (string, error) {
	st := s.Editor.State()
	switch arg {
	case ".":
		if st.Selected == "" {
			return "", fmt.Errorf("%w: no node selected", data.ErrValidation)
		}
		return st.Selected, nil
	case "root":
		if st.Root == nil {
			return "", data.ErrNoTree
		}
		return st.Root.ID, nil
	}
	return arg, nil
}
