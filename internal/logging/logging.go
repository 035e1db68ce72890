// Package logging configures structured logging for the process.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup builds the process logger and installs it as the slog default. Logs
// go to stderr so they never interleave with the progress rendering on
// stdout; verbose enables debug-level output. JSON mode is for runs driven by
// other tooling that wants machine-readable logs.
func Setup(service string, verbose, jsonOut bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if jsonOut {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	base := slog.New(handler).With(slog.String("service", strings.TrimSpace(service)))
	slog.SetDefault(base)
	return base
}
