package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mindtree/local-app/internal/log"
)

// DefaultPrompt is the generation prompt of a node that has none saved.
const DefaultPrompt = "このノードのアイデアを膨らませてください"

// PromptStore keeps the last generation prompt used on each node.
type PromptStore interface {
	GetNodePrompt(ctx context.Context, nodeID int64) (string, error)
	UpsertNodePrompt(ctx context.Context, nodeID int64, prompt string) error
}

// PromptStorage implements the PromptStore interface.
type PromptStorage struct {
	storage *Storage
	logger  *log.Logger
}

// NewPromptStorage creates a new PromptStorage instance.
func NewPromptStorage(storage *Storage) *PromptStorage {
	return &PromptStorage{storage: storage, logger: storage.logger}
}

// GetNodePrompt returns the saved prompt or DefaultPrompt.
func (s *PromptStorage) GetNodePrompt(ctx context.Context, nodeID int64) (string, error) {
	var prompt string
	err := s.storage.exec.QueryRowContext(ctx, "SELECT prompt FROM node_prompts WHERE node_id = ?", nodeID).Scan(&prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultPrompt, nil
	}
	if err != nil {
		s.logger.Error(ctx, "Failed to get node prompt", log.Fields{"nodeID": nodeID, "error": err})
		return "", fmt.Errorf("failed to get node prompt: %w", err)
	}
	return prompt, nil
}

func (s *PromptStorage) UpsertNodePrompt(ctx context.Context, nodeID int64, prompt string) error {
	_, err := s.storage.exec.ExecContext(ctx, `
		INSERT INTO node_prompts (node_id, prompt, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(node_id) DO UPDATE SET prompt = excluded.prompt, updated_at = excluded.updated_at`,
		nodeID, prompt, now())
	if err != nil {
		s.logger.Error(ctx, "Failed to save node prompt", log.Fields{"nodeID": nodeID, "error": err})
		return fmt.Errorf("failed to save node prompt: %w", err)
	}
	return nil
}
