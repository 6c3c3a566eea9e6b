package logger

import (
	"log/slog"
	"os"
)

// New returns the root structured logger. Debug level is enabled outside
// production so playback tick activity stays visible during development.
func New(environment string) *slog.Logger {
	level := slog.LevelDebug
	if environment == "production" {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
