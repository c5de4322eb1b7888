package logger

import (
	"context"
	"log/slog"

	"newsdesk/internal/middleware"
)

// ContextHandler decorates every record with the correlation id carried
// by the context, so one id is enough to pull every log line for an item
// or request.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
