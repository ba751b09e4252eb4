// Package cli provides the interactive shell of mindtree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/session"
	"mindtree/local-app/internal/ui"
)

// CLI represents the command-line interface of one session
type CLI struct {
	sessions    *session.SessionManager
	sessionID   string
	rl          *readline.Instance
	ui          *ui.TreeUI
	historyFile string
	logger      *log.Logger
}

// NewCLI creates a new CLI writing to w. historyFile may be empty to keep no line history.
func NewCLI(sm *session.SessionManager, w io.Writer, useColor bool, historyFile string, logger *log.Logger) *CLI {
	return &CLI{
		sessions:    sm,
		ui:          ui.NewTreeUI(w, useColor),
		historyFile: historyFile,
		logger:      logger,
	}
}

// Start opens the session the CLI runs its commands in
func (c *CLI) Start(ctx context.Context) error {
	if c.sessionID != "" {
		return nil
	}
	id, err := c.sessions.SessionAdd(ctx)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	c.sessionID = id
	return nil
}

// Run starts the CLI and handles user input until exit, EOF or Stop
func (c *CLI) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	defer c.sessions.SessionDelete(ctx, c.sessionID)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       c.historyFile,
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	c.rl = rl
	defer func() {
		if err := rl.Close(); err != nil {
			c.logger.Error(ctx, "Failed to close readline", log.Fields{"error": err})
		}
	}()

	v := c.ui.Visualizer()
	v.Println("Welcome to mindtree!")
	v.Println("Type 'help' for a list of commands or 'exit' to quit.")
	c.Execute(ctx, "tree view")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				c.Execute(ctx, "exit")
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			c.Execute(ctx, "exit")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		if c.Execute(ctx, line) {
			return nil
		}
	}
}

// Stop interrupts a running Run
func (c *CLI) Stop() {
	if c.rl != nil {
		_ = c.rl.Close()
	}
}

// Execute runs one input line and prints its result. It reports whether the shell should exit.
func (c *CLI) Execute(ctx context.Context, line string) bool {
	args := ParseArgs(strings.TrimSpace(line))
	if len(args) == 0 {
		return false
	}
	if args[0] == "help" {
		c.printHelp(args[1:])
		return false
	}

	cmd, err := parseCommand(args)
	if err != nil {
		c.ui.Visualizer().Error(err)
		return false
	}

	exit, err := c.ExecuteCommand(ctx, cmd)
	if err != nil {
		c.ui.Visualizer().Error(err)
	}
	return exit
}

// ExecuteCommand runs a command in the CLI session and prints its result
func (c *CLI) ExecuteCommand(ctx context.Context, cmd model.Command) (exit bool, err error) {
	res, err := c.sessions.SessionRun(ctx, c.sessionID, cmd)
	if err != nil {
		return false, err
	}
	c.render(cmd, res)
	return res.Exit, nil
}

// ParseArgs splits input on spaces, keeping double-quoted runs together
func ParseArgs(input string) []string {
	var args []string
	var currentArg strings.Builder
	inQuotes := false
	quoted := false

	for _, char := range input {
		switch char {
		case '"':
			inQuotes = !inQuotes
			quoted = true
		case ' ', '\t':
			if !inQuotes {
				if currentArg.Len() > 0 || quoted {
					args = append(args, currentArg.String())
					currentArg.Reset()
				}
				quoted = false
			} else {
				currentArg.WriteRune(char)
			}
		default:
			currentArg.WriteRune(char)
		}
	}

	if currentArg.Len() > 0 || quoted {
		args = append(args, currentArg.String())
	}

	return args
}

var shortcuts = map[string]model.Command{
	"undo": {Scope: "history", Operation: "undo"},
	"redo": {Scope: "history", Operation: "redo"},
	"ls":   {Scope: "tree", Operation: "view"},
	"exit": {Scope: "system", Operation: "exit"},
	"quit": {Scope: "system", Operation: "quit"},
}

// parseCommand turns parsed arguments into a model.Command
func parseCommand(args []string) (model.Command, error) {
	if cmd, ok := shortcuts[strings.ToLower(args[0])]; ok && len(args) == 1 {
		return cmd, nil
	}
	if len(args) < 2 {
		return model.Command{}, fmt.Errorf("missing operation for '%s', see 'help %s'", args[0], args[0])
	}
	return model.Command{
		Scope:     strings.ToLower(args[0]),
		Operation: strings.ToLower(args[1]),
		Args:      args[2:],
	}, nil
}

// render prints a command result and keeps the prompt on the open tree's name
func (c *CLI) render(cmd model.Command, res *model.CommandResult) {
	switch {
	case cmd.Scope == "node" && cmd.Operation == "palette":
		c.ui.Palette(res.Lines)
	default:
		c.ui.Lines(res.Lines)
	}
	if res.Trees != nil {
		var openID int64
		if s, ok := c.sessions.SessionGet(c.sessionID); ok {
			openID = s.Editor.TreeID()
		}
		c.ui.TreeList(res.Trees, openID)
	}
	if res.Tree != nil {
		c.ui.TreeView(res.Tree, res.Selected, res.EditID)
	}
	if res.Message != "" {
		c.ui.Visualizer().Println(res.Message)
	}
	if c.rl != nil && res.TreeName != "" {
		c.rl.SetPrompt(res.TreeName + "> ")
	}
}

// completer completes scopes and operations
func completer() *readline.PrefixCompleter {
	ops := session.Operations()
	scopes := make([]string, 0, len(ops))
	for scope := range ops {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)

	items := make([]readline.PrefixCompleterInterface, 0, len(scopes)+len(shortcuts)+1)
	for _, scope := range scopes {
		children := make([]readline.PrefixCompleterInterface, 0, len(ops[scope]))
		for _, op := range ops[scope] {
			children = append(children, readline.PcItem(op))
		}
		items = append(items, readline.PcItem(scope, children...))
	}
	for name := range shortcuts {
		items = append(items, readline.PcItem(name))
	}
	items = append(items, readline.PcItem("help"))
	return readline.NewPrefixCompleter(items...)
}
