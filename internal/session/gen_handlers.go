package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/generate"
	"mindtree/local-app/internal/model"
)

func initGenCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"run":     handleGenRun,
		"accept":  handleGenAccept,
		"discard": handleGenDiscard,
		"prompt":  handleGenPrompt,
	}
}

// handleGenRun requests child suggestions for a node and shows them as a preview
func handleGenRun(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	count := generate.DefaultCount
	var prompt string
	if len(cmd.Args) >= 2 {
		if count, err = strconv.Atoi(cmd.Args[1]); err != nil {
			return nil, fmt.Errorf("%w: invalid count: %s", data.ErrValidation, cmd.Args[1])
		}
	}
	if len(cmd.Args) == 3 {
		prompt = cmd.Args[2]
	}

	p, err := s.Editor.Generate(ctx, id, prompt, count)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(p.Nodes)+1)
	lines = append(lines, fmt.Sprintf("Suggestions for [%s] (%s):", p.TargetID, p.Prompt))
	for i, text := range p.Nodes {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, text))
	}
	return &model.CommandResult{Lines: lines, Message: "Use 'gen accept' to insert or 'gen discard' to drop them"}, nil
}

func handleGenAccept(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	ids, err := s.Editor.AcceptPreview(ctx)
	if err != nil {
		return nil, err
	}
	return s.view(fmt.Sprintf("Inserted %d nodes", len(ids))), nil
}

func handleGenDiscard(_ context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	s.Editor.DiscardPreview()
	return &model.CommandResult{Message: "Preview discarded"}, nil
}

// handleGenPrompt shows the saved prompt of a node, or saves a new one
func handleGenPrompt(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if len(cmd.Args) == 2 {
		if err := s.Editor.SavePrompt(ctx, id, cmd.Args[1]); err != nil {
			return nil, err
		}
		return &model.CommandResult{Message: "Prompt saved"}, nil
	}
	prompt, err := s.Editor.Prompt(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.CommandResult{Message: strings.TrimSpace(prompt)}, nil
}
