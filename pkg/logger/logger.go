// Package logger builds a structured slog.Logger from the application's
// LogConfig, resolving the configured destination (file, stdout, stderr).
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gnames/botanic/pkg/config"
)

// New creates a new slog.Logger based on the provided configuration.
// It respects the logging level, format, and destination from the config.
// Invalid level and format values default to Info and JSON; a destination
// other than "stdout" or "stderr" writes to the log file (see
// resolveWriter).
func New(cfg *config.LogConfig, homeDir string) *slog.Logger {
	level := ParseLevel(cfg.Level)
	w := resolveWriter(cfg.Destination, homeDir)

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json", "":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}

// resolveWriter maps a Destination value ("stdout", "stderr", "file", or
// empty) to the io.Writer the handler writes to. "file" and unrecognized
// values write to a log file under config.LogDir(homeDir); if the log
// directory cannot be created, it falls back to stderr.
func resolveWriter(destination, homeDir string) io.Writer {
	switch strings.ToLower(destination) {
	case "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		logDir := config.LogDir(homeDir)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return os.Stderr
		}
		path := filepath.Join(logDir, fmt.Sprintf("%s.log", config.AppName))
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stderr
		}
		return f
	}
}

// ParseLevel converts a string log level to slog.Level.
// Valid levels: "debug", "info", "warn", "error" (case-insensitive).
// Invalid levels default to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
