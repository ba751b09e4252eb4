package log

import (
	"strings"

	clog "github.com/charmbracelet/log"
)

// LogLevel represents the type and severity of a log message
type LogLevel int

const (
	LevelCommand LogLevel = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

// String returns the string representation of the LogLevel
func (l LogLevel) String() string {
	switch l {
	case LevelCommand:
		return "COMMAND"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config value to a LogLevel, defaulting to LevelInfo
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l LogLevel) toClogLevel() clog.Level {
	switch l {
	case LevelError:
		return clog.ErrorLevel
	case LevelWarn:
		return clog.WarnLevel
	case LevelDebug:
		return clog.DebugLevel
	default:
		return clog.InfoLevel
	}
}
