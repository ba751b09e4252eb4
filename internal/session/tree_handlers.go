package session

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/storage"
)

func initTreeCommandHandlers() map[string]CommandHandler {
	return map[string]CommandHandler{
		"new":    handleTreeNew,
		"list":   handleTreeList,
		"open":   handleTreeOpen,
		"rename": handleTreeRename,
		"delete": handleTreeDelete,
		"view":   handleTreeView,
		"export": handleTreeExport,
		"import": handleTreeImport,
		"reload": handleTreeReload,
	}
}

// handleTreeNew creates a tree and opens it. Without a name the root gets the placeholder text.
func handleTreeNew(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	name := model.PlaceholderText
	if len(cmd.Args) == 1 {
		name = cmd.Args[0]
	}
	t, err := s.Editor.CreateTree(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Tree created", log.Fields{"treeID": t.ID})
	return s.view(fmt.Sprintf("Tree %d '%s' created", t.ID, t.Name)), nil
}

func handleTreeList(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	trees, err := s.Editor.ListTrees(ctx)
	if err != nil {
		return nil, err
	}
	return &model.CommandResult{Trees: trees}, nil
}

func handleTreeOpen(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := parseTreeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.OpenTree(ctx, id); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

// handleTreeRename renames the given tree, or the open one when only a name is passed
func handleTreeRename(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id := s.Editor.TreeID()
	name := cmd.Args[0]
	if len(cmd.Args) == 2 {
		var err error
		if id, err = parseTreeID(cmd.Args[0]); err != nil {
			return nil, err
		}
		name = cmd.Args[1]
	}
	if id == 0 {
		return nil, data.ErrNoTree
	}
	if err := s.Editor.RenameTree(ctx, id, name); err != nil {
		return nil, err
	}
	return &model.CommandResult{Message: fmt.Sprintf("Tree %d renamed to '%s'", id, strings.TrimSpace(name))}, nil
}

func handleTreeDelete(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	id, err := parseTreeID(cmd.Args[0])
	if err != nil {
		return nil, err
	}
	if err := s.Editor.DeleteTree(ctx, id); err != nil {
		return nil, err
	}
	return s.view(fmt.Sprintf("Tree %d deleted", id)), nil
}

func handleTreeView(_ context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	if s.Editor.TreeID() == 0 {
		return nil, data.ErrNoTree
	}
	return s.view(""), nil
}

func handleTreeExport(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	filename, format := fileArgs(cmd.Args)
	if err := s.Editor.Export(ctx, filename, format); err != nil {
		return nil, err
	}
	return &model.CommandResult{Message: fmt.Sprintf("Tree exported to %s", filename)}, nil
}

func handleTreeImport(ctx context.Context, s *Session, cmd model.Command) (*model.CommandResult, error) {
	filename, format := fileArgs(cmd.Args)
	id, err := s.Editor.Import(ctx, filename, format)
	if err != nil {
		return nil, err
	}
	return s.view(fmt.Sprintf("Imported %s as tree %d", filename, id)), nil
}

func handleTreeReload(ctx context.Context, s *Session, _ model.Command) (*model.CommandResult, error) {
	if err := s.Editor.Reload(ctx); err != nil {
		return nil, err
	}
	return s.view(""), nil
}

func parseTreeID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid tree id: %s", data.ErrValidation, arg)
	}
	return id, nil
}

// fileArgs returns the filename and the format, which defaults to the file extension
func fileArgs(args []string) (filename, format string) {
	filename = args[0]
	if len(args) == 2 {
		return filename, strings.ToLower(args[1])
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return filename, storage.FormatYAML
	}
	return filename, storage.FormatJSON
}
