// Package logging configures the process-wide slog loggers: a human-readable
// text logger on stderr and, when a log file is set, a JSON logger writing
// through a size-rotated file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

// level is shared by every handler so SetLevel applies everywhere at once.
var level = new(slog.LevelVar)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

// Config controls logger setup.
type Config struct {
	Level      string    // trace, debug, info, warn, error
	File       string    // JSON log file; empty disables file logging
	MaxSizeMB  int       // Rotate after this many megabytes
	MaxBackups int       // Rotated files to keep
	MaxAgeDays int       // Days to keep rotated files
	Console    io.Writer // Human-readable output, os.Stderr when nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		lvl := a.Value.Any().(slog.Level)
		label, exists := levelNames[lvl]
		if !exists {
			label = lvl.String()
		}
		a.Value = slog.StringValue(label)
	}
	return a
}

// Init sets up the loggers and installs the structured logger as the slog
// default. The returned function closes the log file.
func Init(cfg Config) (func() error, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	level.Set(lvl)

	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevelName}
	humanReadableLogger = slog.New(slog.NewTextHandler(console, opts))

	closeFunc := func() error { return nil }

	if cfg.File == "" {
		structuredLogger = humanReadableLogger
		slog.SetDefault(structuredLogger)
		return closeFunc, nil
	}

	// lumberjack doesn't create directories
	if dir := filepath.Dir(cfg.File); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 3),
		MaxAge:     orDefault(cfg.MaxAgeDays, 28),
	}
	structuredLogger = slog.New(slog.NewJSONHandler(logWriter, opts))
	slog.SetDefault(structuredLogger)

	return logWriter.Close, nil
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// SetLevel changes the minimum level of every logger.
func SetLevel(lvl slog.Level) {
	level.Set(lvl)
}

// Structured returns the structured logger. Returns nil if Init() has not
// been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the console logger. Returns nil if Init() has not
// been called.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService returns a logger with the 'service' attribute added. Before Init
// it falls back to the slog default logger.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return slog.Default().With("service", serviceName)
	}
	return structuredLogger.With("service", serviceName)
}

// Trace logs a trace message using the default logger.
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}
