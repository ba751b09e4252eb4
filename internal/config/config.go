// Package config provides functionality for loading, saving, and managing
// application configuration settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"mindtree/local-app/internal/model"
)

// Global variables to store the current configuration and its file path.
var (
	currentConfig *model.Config
	configPath    = "./data/config.toml"
)

// Default returns the configuration written on first start.
func Default() *model.Config {
	return &model.Config{
		DatabaseDriver:       "sqlite3",
		DatabaseDir:          "./data",
		DatabaseFile:         "mindtree.db",
		LogFolder:            "./logs",
		CommandLog:           "commands.log",
		ErrorLog:             "errors.log",
		InfoLog:              "info.log",
		LogLevel:             "info",
		EditDebounceMs:       500,
		ContextThreshold:     10,
		DropThresholdPx:      5,
		HistoryLimit:         0,
		DefaultTreeName:      model.PlaceholderText,
		GenerationEndpoint:   "https://api.anthropic.com/v1/messages",
		GenerationModel:      "claude-3-haiku-20240307",
		GenerationAPIKeyEnv:  "ANTHROPIC_API_KEY",
		GenerationTimeoutSec: 60,
	}
}

// ConfigSetPath changes the file used by ConfigLoad and ConfigSave.
func ConfigSetPath(path string) {
	configPath = path
}

// ConfigLoad loads the configuration from the TOML file.
// If the file doesn't exist, it creates a default configuration.
func ConfigLoad() error {
	// Ensure the data directory exists
	dataDir := filepath.Dir(configPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		defaultConfig := Default()
		if err := ConfigSave(defaultConfig); err != nil {
			return fmt.Errorf("failed to create default config: %w", err)
		}
		currentConfig = defaultConfig
		return nil
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	// Keys missing from the file keep their defaults
	cfg := Default()
	if err := toml.Unmarshal(file, cfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	currentConfig = cfg
	return nil
}

// ConfigSave saves the provided configuration to the TOML file.
func ConfigSave(cfg *model.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// ConfigGet returns the current configuration.
func ConfigGet() *model.Config {
	return currentConfig
}

// Validate checks value ranges that the rest of the application relies on.
func Validate(cfg *model.Config) error {
	switch cfg.DatabaseDriver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("database_driver must be sqlite3 or sqlite, got %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseFile == "" {
		return errors.New("database_file must not be empty")
	}
	if cfg.EditDebounceMs < 0 {
		return fmt.Errorf("edit_debounce_ms must not be negative, got %d", cfg.EditDebounceMs)
	}
	if cfg.ContextThreshold < 1 {
		return fmt.Errorf("context_threshold must be positive, got %d", cfg.ContextThreshold)
	}
	if cfg.DropThresholdPx < 0 {
		return fmt.Errorf("drop_threshold_px must not be negative, got %d", cfg.DropThresholdPx)
	}
	if cfg.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", cfg.HistoryLimit)
	}
	if cfg.DefaultTreeName == "" {
		return errors.New("default_tree_name must not be empty")
	}
	return nil
}
