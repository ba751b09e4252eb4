// Package session runs front-end commands against per-session editors.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

const (
	sessionIDLength        = 32
	defaultCleanupInterval = 5 * time.Minute
	defaultSessionTimeout  = 30 * time.Minute
)

var ErrSessionNotFound = errors.New("session not found")

// SessionManager manages multiple concurrent sessions. Commands of all sessions go
// through one queue, so structural mutations never run in parallel.
type SessionManager struct {
	mu            sync.RWMutex
	sessions      map[string]*Session
	dataManager   *data.DataManager
	cleanupTicker *time.Ticker
	done          chan struct{}
	stopOnce      sync.Once
	commandQueue  chan commandExecution
	timeout       time.Duration
	logger        *log.Logger
}

// commandExecution represents a command to be executed in a session and where to send
// its outcome
type commandExecution struct {
	ctx     context.Context
	session *Session
	command model.Command
	reply   chan commandReply
}

type commandReply struct {
	result *model.CommandResult
	err    error
}

// NewSessionManager starts the command execution and cleanup goroutines
func NewSessionManager(dataManager *data.DataManager, logger *log.Logger) *SessionManager {
	ctx := context.Background()
	logger.Info(ctx, "Creating new SessionManager", nil)

	sm := &SessionManager{
		sessions:     make(map[string]*Session),
		dataManager:  dataManager,
		done:         make(chan struct{}),
		commandQueue: make(chan commandExecution),
		timeout:      defaultSessionTimeout,
		logger:       logger,
	}
	sm.startCleanupRoutine(defaultCleanupInterval)
	go sm.commandExecutor()

	logger.Info(ctx, "SessionManager created successfully", nil)
	return sm
}

// SessionAdd creates a new session with its own editor and returns its ID
func (sm *SessionManager) SessionAdd(ctx context.Context) (string, error) {
	sm.logger.Info(ctx, "Adding new session", nil)

	sessionID, err := generateSessionID()
	if err != nil {
		sm.logger.Error(ctx, "Failed to generate session ID", log.Fields{"error": err})
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}

	editor, err := sm.dataManager.NewEditor(log.WithSession(ctx, sessionID), sessionID)
	if err != nil {
		sm.logger.Error(ctx, "Failed to create editor", log.Fields{"error": err})
		return "", fmt.Errorf("failed to create editor: %w", err)
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = NewSession(sessionID, editor, sm.logger)
	sm.mu.Unlock()

	sm.logger.Info(ctx, "New session added", log.Fields{"sessionID": sessionID})
	return sessionID, nil
}

// SessionGet retrieves a session by its ID
func (sm *SessionManager) SessionGet(sessionID string) (*Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	session, exists := sm.sessions[sessionID]
	return session, exists
}

// SessionDelete removes a session, committing its pending edit
func (sm *SessionManager) SessionDelete(ctx context.Context, sessionID string) {
	sm.logger.Info(ctx, "Deleting session", log.Fields{"sessionID": sessionID})

	sm.mu.Lock()
	_, exists := sm.sessions[sessionID]
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	if !exists {
		sm.logger.Warn(ctx, "Attempted to delete non-existent session", log.Fields{"sessionID": sessionID})
		return
	}
	sm.dataManager.CloseEditor(ctx, sessionID)
	sm.logger.Info(ctx, "Session deleted", log.Fields{"sessionID": sessionID})
}

// SessionRun queues a command for a session and waits for its result
func (sm *SessionManager) SessionRun(ctx context.Context, sessionID string, cmd model.Command) (*model.CommandResult, error) {
	ctx = log.WithSession(ctx, sessionID)

	session, exists := sm.SessionGet(sessionID)
	if !exists {
		sm.logger.Error(ctx, "Session not found", log.Fields{"sessionID": sessionID})
		return nil, ErrSessionNotFound
	}

	// Log command in command log
	sm.logger.Command(ctx, "Command received", log.Fields{
		"scope":     cmd.Scope,
		"operation": cmd.Operation,
		"args":      cmd.Args,
	})

	reply := make(chan commandReply, 1)
	select {
	case sm.commandQueue <- commandExecution{ctx: ctx, session: session, command: cmd, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-sm.done:
		return nil, errors.New("session manager is stopped")
	}

	r := <-reply
	if r.err != nil {
		sm.logger.Error(ctx, "Command execution failed", log.Fields{"error": r.err})
		return nil, r.err
	}
	sm.logger.Info(ctx, "Command executed successfully", nil)
	return r.result, nil
}

// commandExecutor processes commands from the queue one at a time
func (sm *SessionManager) commandExecutor() {
	ctx := context.Background()
	sm.logger.Info(ctx, "Starting command executor", nil)

	for {
		select {
		case exec := <-sm.commandQueue:
			result, err := exec.session.CommandRun(exec.ctx, exec.command)
			exec.reply <- commandReply{result: result, err: err}
		case <-sm.done:
			sm.logger.Info(ctx, "Stopping command executor", nil)
			return
		}
	}
}

// startCleanupRoutine starts a goroutine that periodically removes inactive sessions
func (sm *SessionManager) startCleanupRoutine(interval time.Duration) {
	ctx := context.Background()
	sm.logger.Info(ctx, "Starting cleanup routine", nil)

	sm.cleanupTicker = time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-sm.cleanupTicker.C:
				sm.cleanupInactiveSessions()
			case <-sm.done:
				sm.cleanupTicker.Stop()
				return
			}
		}
	}()
}

// Stop ends the background routines and closes every session
func (sm *SessionManager) Stop(ctx context.Context) {
	sm.stopOnce.Do(func() {
		sm.logger.Info(ctx, "Stopping session manager", nil)
		close(sm.done)

		sm.mu.RLock()
		ids := make([]string, 0, len(sm.sessions))
		for id := range sm.sessions {
			ids = append(ids, id)
		}
		sm.mu.RUnlock()

		for _, id := range ids {
			sm.SessionDelete(ctx, id)
		}
	})
}

// cleanupInactiveSessions removes sessions idle for longer than the timeout
func (sm *SessionManager) cleanupInactiveSessions() {
	ctx := context.Background()
	sm.logger.Debug(ctx, "Running cleanup for inactive sessions", nil)

	now := time.Now()
	sm.mu.RLock()
	var idle []string
	for id, session := range sm.sessions {
		if now.Sub(session.LastActivity()) > sm.timeout {
			idle = append(idle, id)
		}
	}
	sm.mu.RUnlock()

	for _, id := range idle {
		sm.logger.Info(ctx, "Removing inactive session", log.Fields{"sessionID": id})
		sm.SessionDelete(ctx, id)
	}
}

// generateSessionID creates a cryptographically secure random session ID
func generateSessionID() (string, error) {
	b := make([]byte, sessionIDLength)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
