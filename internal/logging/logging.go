// Package logging builds the structured logger shared by the service and its stores.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options select the minimum level ("debug", "info", "warn", "error") and the output format
// ("text" or "json").
type Options struct {
	Level  string
	Format string
}

// New returns a logger writing to w.
func New(w io.Writer, options Options) (*slog.Logger, error) {
	var opts slog.HandlerOptions
	switch strings.ToLower(options.Level) {
	case "", "info":
		opts.Level = slog.LevelInfo
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level %q", options.Level)
	}

	switch strings.ToLower(options.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, &opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", options.Format)
	}
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
