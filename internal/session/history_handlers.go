package session

import (
	"context"

	"mindtree/local-app/internal/model"
)

func initHistoryCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"undo": handleHistoryUndo,
		"redo": handleHistoryRedo,
		"list": handleHistoryList,
	}
}

func handleHistoryUndo(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	ok, err := s.Editor.Undo(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.view("Nothing to undo"), nil
	}
	return s.view(""), nil
}

func handleHistoryRedo(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	ok, err := s.Editor.Redo(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.view("Nothing to redo"), nil
	}
	return s.view(""), nil
}

// handleHistoryList lists the undo stack oldest first, then the redo stack next redo first
func handleHistoryList(_ context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	past, future := s.Editor.History()
	lines := make([]string, 0, len(past)+len(future))
	for _, a := range past {
		lines = append(lines, "  "+a.String())
	}
	for _, a := range future {
		lines = append(lines, "↻ "+a.String())
	}
	if len(lines) == 0 {
		return &model.CommandResult{Message: "History is empty"}, nil
	}
	return &model.CommandResult{Lines: lines}, nil
}
