package logging

import (
	"log/slog"
	"os"
)

// New returns the process-wide logger. JSON output so log collectors can
// parse it without a format plugin.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
