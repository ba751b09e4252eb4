// Command mindtree is a terminal mind-map editor backed by a local database.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"mindtree/local-app/internal/cli"
	"mindtree/local-app/internal/config"
	"mindtree/local-app/internal/logview"
	"mindtree/local-app/internal/model"
)

var (
	configPath string
	noColor    bool
	watchDB    bool
	followLogs bool
	logFilter  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mindtree",
		Short:         "Edit mind maps in the terminal",
		Long:          "mindtree edits tree-shaped mind maps stored in a local SQLite database.\nWithout a subcommand it starts the interactive shell.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runShell,
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./data/config.toml)")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	shell := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE:  runShell,
	}
	shell.Flags().BoolVar(&watchDB, "watch", false, "reload open trees when another process changes the database")

	logs := &cobra.Command{
		Use:   "logs [log directory]",
		Short: "Print the application logs",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLogs,
	}
	logs.Flags().BoolVarP(&followLogs, "follow", "f", false, "keep printing new entries")
	logs.Flags().StringVarP(&logFilter, "grep", "g", "", "only print entries containing this text")

	root.AddCommand(
		shell,
		logs,
		&cobra.Command{
			Use:   "trees",
			Short: "List trees",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runOnce(cmd.Context(), model.Command{Scope: "tree", Operation: "list"})
			},
		},
		&cobra.Command{
			Use:   "export <tree id> <file> [json|yaml]",
			Short: "Export a tree to a JSON or YAML file",
			Args:  cobra.RangeArgs(2, 3),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
					return fmt.Errorf("invalid tree id: %s", args[0])
				}
				return runOnce(cmd.Context(),
					model.Command{Scope: "tree", Operation: "open", Args: args[:1]},
					model.Command{Scope: "tree", Operation: "export", Args: args[1:]},
				)
			},
		},
		&cobra.Command{
			Use:   "import <file> [json|yaml]",
			Short: "Import a JSON or YAML file as a new tree",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runOnce(cmd.Context(), model.Command{Scope: "tree", Operation: "import", Args: args})
			},
		},
	)
	return root
}

// runShell runs the interactive shell until exit or an interrupt signal
func runShell(cmd *cobra.Command, _ []string) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if watchDB {
		if err := a.watchDatabase(ctx); err != nil {
			return fmt.Errorf("failed to watch database: %w", err)
		}
	}

	historyFile := filepath.Join(a.cfg.DatabaseDir, ".mindtree_history")
	shell := cli.NewCLI(a.sessions, os.Stdout, !noColor, historyFile, a.logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		if _, ok := <-sigChan; ok {
			fmt.Println("\nReceived terminate signal. Shutting down...")
			shell.Stop()
		}
	}()

	if err := shell.Run(ctx); err != nil {
		return err
	}
	fmt.Println("Goodbye!")
	return nil
}

// runLogs prints the log folder of the configuration, or the given directory
func runLogs(cmd *cobra.Command, args []string) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		if configPath != "" {
			config.ConfigSetPath(configPath)
		}
		if err := config.ConfigLoad(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		dir = config.ConfigGet().LogFolder
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("log directory '%s' does not exist", dir)
	}

	v := logview.NewViewer(dir, logFilter, cmd.OutOrStdout(), !noColor)
	if !followLogs {
		return v.Scan()
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return v.Follow(ctx)
}

// runOnce runs commands in a fresh session without the shell
func runOnce(ctx context.Context, cmds ...model.Command) error {
	a, err := newApp(configPath)
	if err != nil {
		return err
	}
	defer a.close()

	if ctx == nil {
		ctx = context.Background()
	}
	shell := cli.NewCLI(a.sessions, os.Stdout, !noColor, "", a.logger)
	if err := shell.Start(ctx); err != nil {
		return err
	}
	for _, c := range cmds {
		if _, err := shell.ExecuteCommand(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
