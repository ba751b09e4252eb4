// Package log provides functionality for logging commands, errors and general activity
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	clog "github.com/charmbracelet/log"

	"mindtree/local-app/internal/model"
)

// Fields holds structured key/value pairs attached to a log entry
type Fields map[string]interface{}

type sessionKey struct{}

// WithSession returns a context whose log entries carry the session id
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

// Logger writes JSON entries to separate command, error and info log files
type Logger struct {
	commandLogger *clog.Logger
	errorLogger   *clog.Logger
	infoLogger    *clog.Logger
	files         []*os.File
}

// NewLogger creates a new Logger writing into cfg.LogFolder.
// Info, warn and debug entries below level are discarded.
func NewLogger(cfg *model.Config, level LogLevel) (*Logger, error) {
	if err := os.MkdirAll(cfg.LogFolder, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{}
	open := func(name string) (*os.File, error) {
		f, err := os.OpenFile(filepath.Join(cfg.LogFolder, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.files = append(l.files, f)
		return f, nil
	}

	commandFile, err := open(cfg.CommandLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open command log file: %w", err)
	}
	errorFile, err := open(cfg.ErrorLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open error log file: %w", err)
	}
	infoFile, err := open(cfg.InfoLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open info log file: %w", err)
	}

	l.commandLogger = newJSONLogger(commandFile, clog.InfoLevel)
	l.errorLogger = newJSONLogger(errorFile, clog.ErrorLevel)
	l.infoLogger = newJSONLogger(infoFile, level.toClogLevel())
	return l, nil
}

// NewNopLogger returns a Logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{
		commandLogger: newJSONLogger(io.Discard, clog.FatalLevel),
		errorLogger:   newJSONLogger(io.Discard, clog.FatalLevel),
		infoLogger:    newJSONLogger(io.Discard, clog.FatalLevel),
	}
}

// NewWriterLogger sends every entry to w. Used by tests that assert on log output.
func NewWriterLogger(w io.Writer, level LogLevel) *Logger {
	return &Logger{
		commandLogger: newJSONLogger(w, clog.InfoLevel),
		errorLogger:   newJSONLogger(io.Discard, clog.FatalLevel),
		infoLogger:    newJSONLogger(w, level.toClogLevel()),
	}
}

func newJSONLogger(w io.Writer, level clog.Level) *clog.Logger {
	l := clog.NewWithOptions(w, clog.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Level:           level,
	})
	l.SetFormatter(clog.JSONFormatter)
	return l
}

// Command logs a received user command
func (l *Logger) Command(ctx context.Context, msg string, fields Fields) {
	l.commandLogger.Log(clog.InfoLevel, msg, keyvals(ctx, fields)...)
}

// Error logs to both the error and the info log
func (l *Logger) Error(ctx context.Context, msg string, fields Fields) {
	kv := keyvals(ctx, fields)
	l.errorLogger.Log(clog.ErrorLevel, msg, kv...)
	l.infoLogger.Log(clog.ErrorLevel, msg, kv...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields Fields) {
	l.infoLogger.Log(clog.WarnLevel, msg, keyvals(ctx, fields)...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields Fields) {
	l.infoLogger.Log(clog.InfoLevel, msg, keyvals(ctx, fields)...)
}

func (l *Logger) Debug(ctx context.Context, msg string, fields Fields) {
	l.infoLogger.Log(clog.DebugLevel, msg, keyvals(ctx, fields)...)
}

// Close closes all log files
func (l *Logger) Close() error {
	var firstErr error
	for _, f := range l.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close log file %s: %w", f.Name(), err)
		}
	}
	l.files = nil
	return firstErr
}

// keyvals flattens fields in key order so entries are stable
func keyvals(ctx context.Context, fields Fields) []interface{} {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(keys)*2+2)
	if ctx != nil {
		if id, ok := ctx.Value(sessionKey{}).(string); ok {
			kv = append(kv, "session", id)
		}
	}
	for _, k := range keys {
		v := fields[k]
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		kv = append(kv, k, v)
	}
	return kv
}
