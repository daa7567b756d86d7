// Package logger installs the process-wide slog handler.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// level is shared by the installed handler so it can change at runtime.
var level = new(slog.LevelVar)

// ParseLevel maps debug|info|warn|error onto a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Setup installs a text handler on w as the default logger.
func Setup(w io.Writer, lvl slog.Level) *slog.Logger {
	level.Set(lvl)
	l := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(l)
	return l
}

// SetLevel changes the level of the installed handler.
func SetLevel(lvl slog.Level) {
	if level.Level() != lvl {
		level.Set(lvl)
		slog.Info("log level changed", "level", lvl.String())
	}
}

// Level returns the current level.
func Level() slog.Level {
	return level.Level()
}
