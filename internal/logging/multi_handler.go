package logging

import (
	"context"
	"log/slog"
	"slices"

	"github.com/thoreinstein/claude-base-setup/internal/errors"
)

// MultiHandler fans records out to several handlers, such as the console and
// a --log-file destination.
type MultiHandler struct {
	handlers []slog.Handler
}

// NewMultiHandler returns a handler writing to every one of handlers.
func NewMultiHandler(handlers ...slog.Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Enabled reports whether any destination accepts level.
func (h *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(h.handlers, func(d slog.Handler) bool {
		return d.Enabled(ctx, level)
	})
}

// Handle passes a copy of r to each destination that accepts its level and
// returns every error encountered.
func (h *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	for _, d := range h.handlers {
		if d.Enabled(ctx, r.Level) {
			err = errors.CombineErrors(err, d.Handle(ctx, r.Clone()))
		}
	}
	return err
}

// WithAttrs applies attrs to every destination.
func (h *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.derive(func(d slog.Handler) slog.Handler { return d.WithAttrs(attrs) })
}

// WithGroup opens group name on every destination.
func (h *MultiHandler) WithGroup(name string) slog.Handler {
	return h.derive(func(d slog.Handler) slog.Handler { return d.WithGroup(name) })
}

func (h *MultiHandler) derive(fn func(slog.Handler) slog.Handler) *MultiHandler {
	next := make([]slog.Handler, len(h.handlers))
	for i, d := range h.handlers {
		next[i] = fn(d)
	}
	return &MultiHandler{handlers: next}
}
