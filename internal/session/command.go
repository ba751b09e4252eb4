package session

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
)

// argSpec bounds the number of arguments an operation accepts
type argSpec struct {
	min, max int
	usage    string
}

var commandSpecs = map[string]map[string]argSpec{
	"tree": {
		"new":    {0, 1, "tree new [<name>]"},
		"list":   {0, 0, "tree list"},
		"open":   {1, 1, "tree open <tree id>"},
		"rename": {1, 2, "tree rename [<tree id>] <name>"},
		"delete": {1, 1, "tree delete <tree id>"},
		"view":   {0, 0, "tree view"},
		"export": {1, 2, "tree export <filename> [json|yaml]"},
		"import": {1, 2, "tree import <filename> [json|yaml]"},
		"reload": {0, 0, "tree reload"},
	},
	"node": {
		"add":      {2, 2, "node add <parent> <text>"},
		"sibling":  {2, 2, "node sibling <node> <text>"},
		"edit":     {2, 2, "node edit <node> <text>"},
		"delete":   {1, 1, "node delete <node>"},
		"move":     {3, 3, "node move <node> <target> before|after|inside"},
		"drop":     {4, 4, "node drop <node> <target> <offset> <height>"},
		"color":    {1, 2, "node color <node> [<color>|none]"},
		"toggle":   {1, 1, "node toggle <node>"},
		"expand":   {1, 1, "node expand <node>"},
		"collapse": {1, 1, "node collapse <node>"},
		"select":   {1, 1, "node select <node>"},
		"find":     {1, 1, "node find <query>"},
		"context":  {0, 1, "node context [<node>]"},
		"palette":  {0, 0, "node palette"},
	},
	"edit": {
		"begin":   {1, 1, "edit begin <node>"},
		"compose": {1, 2, "edit compose <anchor> [child|sibling]"},
		"type":    {1, 1, "edit type <text>"},
		"commit":  {0, 0, "edit commit"},
		"cancel":  {0, 0, "edit cancel"},
	},
	"history": {
		"undo": {0, 0, "history undo"},
		"redo": {0, 0, "history redo"},
		"list": {0, 0, "history list"},
	},
	"gen": {
		"run":     {1, 3, "gen run <node> [<count>] [<prompt>]"},
		"accept":  {0, 0, "gen accept"},
		"discard": {0, 0, "gen discard"},
		"prompt":  {1, 2, "gen prompt <node> [<prompt>]"},
	},
	"system": {
		"exit": {0, 0, "exit"},
		"quit": {0, 0, "quit"},
	},
}

// Command wraps the model.Command and adds session-specific functionality
type Command struct {
	command model.Command
	logger  *log.Logger
}

// NewCommand creates a new Command from a model.Command
func NewCommand(cmd model.Command, logger *log.Logger) Command {
	return Command{command: cmd, logger: logger}
}

// Validate checks the scope, the operation and the argument count
func (c *Command) Validate(ctx context.Context) error {
	c.logger.Debug(ctx, "Validating command", log.Fields{"scope": c.command.Scope, "operation": c.command.Operation})

	if c.command.Scope == "" {
		c.logger.Error(ctx, "Command scope is empty", nil)
		return fmt.Errorf("%w: command scope is required", data.ErrValidation)
	}

	ops, ok := commandSpecs[c.command.Scope]
	if !ok {
		c.logger.Error(ctx, "Invalid command scope", log.Fields{"scope": c.command.Scope})
		return fmt.Errorf("%w: invalid command scope: %s", data.ErrValidation, c.command.Scope)
	}
	spec, ok := ops[c.command.Operation]
	if !ok {
		c.logger.Error(ctx, "Invalid command operation", log.Fields{"scope": c.command.Scope, "operation": c.command.Operation})
		return fmt.Errorf("%w: invalid %s operation: %s", data.ErrValidation, c.command.Scope, c.command.Operation)
	}

	n := len(c.command.Args)
	if n < spec.min || n > spec.max {
		c.logger.Error(ctx, "Invalid argument count", log.Fields{"argCount": n, "usage": spec.usage})
		return fmt.Errorf("%w: %w: usage: %s", data.ErrValidation, ErrArgCount, spec.usage)
	}
	return nil
}

var ErrArgCount = errors.New("wrong number of arguments")

// Usage returns the usage line of an operation, or "" if it does not exist
func Usage(scope, operation string) string {
	return commandSpecs[scope][operation].usage
}

// Operations returns the operations of every scope, sorted
func Operations() map[string][]string {
	out := make(map[string][]string, len(commandSpecs))
	for scope, ops := range commandSpecs {
		names := make([]string, 0, len(ops))
		for op := range ops {
			names = append(names, op)
		}
		slices.Sort(names)
		out[scope] = names
	}
	return out
}
