package logger

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the process wide slog logger. Production emits JSON,
// everything else human readable text with debug enabled.
func Setup(env string) *slog.Logger {
	return setup(env, os.Stdout)
}

func setup(env string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler).With("service", "autovault-agents")
	slog.SetDefault(l)
	return l
}
