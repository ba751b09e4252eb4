package session

import (
	"context"
	"fmt"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/model"
)

func initEditCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"begin":   handleEditBegin,
		"compose": handleEditCompose,
		"type":    handleEditType,
		"commit":  handleEditCommit,
		"cancel":  handleEditCancel,
	}
}

func handleEditBegin(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.BeginEdit(ctx, id); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

// handleEditCompose starts editing a new unsaved node, a sibling of the anchor by default
func handleEditCompose(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	anchorID, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	asChild := false
	if len(cmd.Args) == 2 {
		switch cmd.Args[1] {
		case "child":
			asChild = true
		case "sibling":
		default:
			return nil, fmt.Errorf("%w: expected child or sibling: %s", data.ErrValidation, cmd.Args[1])
		}
	}
	id, err := s.Editor.BeginCompose(ctx, anchorID, asChild)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return s.view("Nothing to compose there"), nil
	}
	return s.view(""), nil
}

func handleEditType(_ context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	if err := s.Editor.Type(cmd.Args[0]); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleEditCommit(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	if err := s.Editor.CommitEdit(ctx); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleEditCancel(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	if err := s.Editor.CancelEdit(ctx); err != nil {
		return nil, err
	}
	return s.view(""), nil
}
