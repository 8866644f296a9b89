package logger

import (
	"log/slog"
	"os"
)

// New returns the JSON slog.Logger shared by every dispatch component.
func New() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h).With(slog.String("service", "dispatch"))
}
