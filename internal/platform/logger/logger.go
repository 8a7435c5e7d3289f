package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. JSON output so the hosting
// platform's log collector can index attributes.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
