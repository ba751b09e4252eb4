package session

import (
	"context"

	"mindtree/local-app/internal/model"
)

func initSystemCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"exit": handleSystemExit,
		"quit": handleSystemExit,
	}
}

// handleSystemExit commits any pending edit before the front end leaves
func handleSystemExit(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	if err := s.Editor.CommitEdit(ctx); err != nil {
		return nil, err
	}
	return &model.CommandResult{Exit: true}, nil
}
