package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigLoadWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "config.toml")
	ConfigSetPath(path)

	require.NoError(t, ConfigLoad())
	require.Equal(t, Default(), ConfigGet())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "database_driver")
	require.Contains(t, string(data), "sqlite3")
}

func TestConfigLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("database_driver = \"sqlite\"\nedit_debounce_ms = 50\n"), 0644))
	ConfigSetPath(path)

	require.NoError(t, ConfigLoad())
	cfg := ConfigGet()
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 50, cfg.EditDebounceMs)
	require.Equal(t, 10, cfg.ContextThreshold)
}

func TestConfigLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("database_driver = \"postgres\"\n"), 0644))
	ConfigSetPath(path)

	require.Error(t, ConfigLoad())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	cfg.ContextThreshold = 0
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.DefaultTreeName = ""
	require.Error(t, Validate(cfg))
}
