// Package logging provides structured logging setup for wealth-map.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds a logger writing to w.
// Dev mode uses human-readable text at debug level; prod uses JSON at info.
func New(w io.Writer, devMode bool) *slog.Logger {
	if devMode {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup installs the default slog logger on stderr, leaving stdout to
// command output.
func Setup(devMode bool) {
	slog.SetDefault(New(os.Stderr, devMode))
}

// SetupCLI installs a text logger on stderr for one-shot commands.
// Only warnings and errors are shown unless verbose is set.
func SetupCLI(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
