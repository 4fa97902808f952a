package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger: structured JSON on stdout. Audit-relevant
// lines carry log_type=audit so log pipelines can route them.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
