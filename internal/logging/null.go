package logging

import (
	"io"
	"log/slog"
)

// NewNullLogger returns a Logger that discards everything. Intended for
// tests and for components that were not handed a logger.
func NewNullLogger() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
