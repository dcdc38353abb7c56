// Package logging builds the slog logger shared by every component.
// Components attach their own identity via logger.With("component", ...).
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// New creates a text slog.Logger on stderr at the given level. Unknown
// level strings select debug so misconfiguration surfaces everything
// rather than hiding it.
func New(level string) *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler)
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "info":
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
