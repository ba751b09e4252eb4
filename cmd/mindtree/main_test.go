package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	root := newRootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"shell", "logs", "trees", "export", "import"}, names)

	shell, _, err := root.Find([]string{"shell"})
	require.NoError(t, err)
	assert.NotNil(t, shell.Flags().Lookup("watch"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestExportValidatesArgs(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"export", "abc", "out.json"})
	root.SetOut(&discard{})
	root.SetErr(&discard{})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid tree id")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestLogsPrintsDirectory(t *testing.T) {
	dir := t.TempDir()
	line := `{"time":"2024-05-01T10:30:00Z","level":"info","msg":"Tree opened","nodes":4}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "info.log"), []byte(line), 0o644))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"logs", "--no-color", dir})
	require.NoError(t, root.Execute())
	assert.Equal(t, "24-05-01 10:30:00.000000 INFO  Tree opened\n    nodes: 4\n", out.String())
}

func TestLogsRejectsMissingDirectory(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&discard{})
	root.SetErr(&discard{})
	root.SetArgs([]string{"logs", filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, root.Execute())
}
