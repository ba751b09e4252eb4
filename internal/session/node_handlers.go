package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

func initNodeCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"add":      handleNodeAdd,
		"sibling":  handleNodeSibling,
		"edit":     handleNodeEdit,
		"delete":   handleNodeDelete,
		"move":     handleNodeMove,
		"drop":     handleNodeDrop,
		"color":    handleNodeColor,
		"toggle":   handleNodeToggle,
		"expand":   handleNodeExpand,
		"collapse": handleNodeCollapse,
		"select":   handleNodeSelect,
		"find":     handleNodeFind,
		"context":  handleNodeContext,
		"palette":  handleNodePalette,
	}
}

// handleNodeAdd handles the node add command
func handleNodeAdd(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	parentID, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	id, err := s.Editor.AddChild(ctx, parentID, cmd.Args[1])
	if err != nil {
		s.logger.Error(ctx, "Failed to add node", log.Fields{"parentID": parentID, "error": err})
		return nil, err
	}
	return s.view(fmt.Sprintf("Node %s added", id)), nil
}

func handleNodeSibling(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	siblingID, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	id, err := s.Editor.AddSibling(ctx, siblingID, cmd.Args[1])
	if err != nil {
		return nil, err
	}
	if id == "" {
		return s.view("The root node cannot have siblings"), nil
	}
	return s.view(fmt.Sprintf("Node %s added", id)), nil
}

func handleNodeEdit(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.Rename(ctx, id, cmd.Args[1]); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleNodeDelete(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.Delete(ctx, id); err != nil {
		return nil, err
	}
	return s.view(fmt.Sprintf("Node %s deleted", id)), nil
}

func handleNodeMove(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	sourceID, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	targetID, err := s.resolveNode(cmd.Args[1])
	if err != nil {
		return nil, err
	}
	pos, ok := model.ParsePosition(cmd.Args[2])
	if !ok {
		return nil, fmt.Errorf("%w: position must be before, after or inside: %s", data.ErrValidation, cmd.Args[2])
	}
	if err := s.Editor.Move(ctx, sourceID, targetID, pos); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

// handleNodeDrop resolves a pointer drop at offset within a target row of the given height
func handleNodeDrop(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	sourceID, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	targetID, err := s.resolveNode(cmd.Args[1])
	if err != nil {
		return nil, err
	}
	offset, err := strconv.ParseFloat(cmd.Args[2], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid offset: %s", data.ErrValidation, cmd.Args[2])
	}
	height, err := strconv.ParseFloat(cmd.Args[3], 64)
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("%w: invalid height: %s", data.ErrValidation, cmd.Args[3])
	}
	moved, err := s.Editor.Drop(ctx, sourceID, targetID, offset, height)
	if err != nil {
		return nil, err
	}
	if !moved {
		return s.view("Drop ignored"), nil
	}
	return s.view(""), nil
}

// handleNodeColor sets a palette color, or clears it with "none" or no color argument
func handleNodeColor(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	var color *string
	if len(cmd.Args) == 2 && !strings.EqualFold(cmd.Args[1], "none") {
		c := strings.ToLower(cmd.Args[1])
		color = &c
	}
	if err := s.Editor.Recolor(ctx, id, color); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleNodeToggle(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.ToggleExpanded(ctx, id); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleNodeExpand(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	return setExpanded(ctx, s, cmd.Args[0], true)
}

func handleNodeCollapse(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	return setExpanded(ctx, s, cmd.Args[0], false)
}

func setExpanded(ctx context.Context, s *Session, arg string, expanded bool) (*model.CommandResult, error) {
	id, err := s.resolveNode(arg)
	if err != nil {
		return nil, err
	}
	if err := s.Editor.SetExpanded(ctx, id, expanded); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleNodeSelect(_ context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := s.resolveNode(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.Select(id); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func handleNodeFind(_ context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	matches := s.Editor.Search(cmd.Args[0])
	if len(matches) == 0 {
		return &model.CommandResult{Message: "No matching nodes"}, nil
	}
	lines := make([]string, 0, len(matches))
	for _, m := range matches {
		lines = append(lines, fmt.Sprintf("[%s] %s", m.ID, m.Text))
	}
	return &model.CommandResult{Lines: lines}, nil
}

// handleNodeContext shows the outline a generation request for the node would carry
func handleNodeContext(_ context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	arg := "."
	if len(cmd.Args) == 1 {
		arg = cmd.Args[0]
	}
	id, err := s.resolveNode(arg)
	if err != nil {
		return nil, err
	}
	text := s.Editor.Context(id)
	if text == "" {
		return &model.CommandResult{Message: "No context"}, nil
	}
	return &model.CommandResult{Lines: strings.Split(strings.TrimRight(text, "\n"), "\n")}, nil
}

func handleNodePalette(_ context.Context, _ *Session, _ model.Command) (*model.CommandResult, error) {
	return &model.CommandResult{Lines: append([]string(nil), model.Palette...)}, nil
}
