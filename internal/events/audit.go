package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/tasker-api/internal/platform/logger"
)

// AuditLogHandler records every event in the structured log.
type AuditLogHandler struct {
	logger *slog.Logger
}

// NewAuditLogHandler creates an AuditLogHandler.
func NewAuditLogHandler(l *slog.Logger) *AuditLogHandler {
	if l == nil {
		l = slog.Default()
	}
	return &AuditLogHandler{logger: l.With(slog.String("component", "audit"))}
}

// HandleEvent implements EventHandler.
func (h *AuditLogHandler) HandleEvent(ctx context.Context, event *Event) error {
	logger.FromContextOrDefault(ctx, h.logger).Info("audit event",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.Type),
		slog.String("actor_id", event.ActorID.String()),
		slog.String("payload", string(event.Payload)),
		slog.Time("created_at", event.CreatedAt))
	return nil
}
