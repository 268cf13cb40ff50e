package slab

import (
	"io"
	"log/slog"
)

// Options configures a new arena. The zero value is valid.
type Options struct {
	Logger       *slog.Logger // Debug-level page and lifecycle events. Default: discard
	InitialPages int          // Pages to add up front. Default: 0, pages are added on demand
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return discardLogger
	}
	return o.Logger
}
