package model

// Config holds the application settings loaded from config.toml.
type Config struct {
	DatabaseDriver       string `toml:"database_driver"`
	DatabaseDir          string `toml:"database_dir"`
	DatabaseFile         string `toml:"database_file"`
	LogFolder            string `toml:"log_folder"`
	CommandLog           string `toml:"command_log"`
	ErrorLog             string `toml:"error_log"`
	InfoLog              string `toml:"info_log"`
	LogLevel             string `toml:"log_level"`
	EditDebounceMs       int    `toml:"edit_debounce_ms"`
	ContextThreshold     int    `toml:"context_threshold"`
	DropThresholdPx      int    `toml:"drop_threshold_px"`
	HistoryLimit         int    `toml:"history_limit"`
	DefaultTreeName      string `toml:"default_tree_name"`
	GenerationEndpoint   string `toml:"generation_endpoint"`
	GenerationModel      string `toml:"generation_model"`
	GenerationAPIKeyEnv  string `toml:"generation_api_key_env"`
	GenerationTimeoutSec int    `toml:"generation_timeout_sec"`
}
