package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// NotificationHandler serves the recipient's notifications and the due date sweep.
type NotificationHandler struct {
	notifications service.NotificationService
	generator     service.NotificationGenerator
	logger        *slog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(
	notifications service.NotificationService,
	generator service.NotificationGenerator,
	logger *slog.Logger,
) *NotificationHandler {
	if notifications == nil || generator == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("notifications and generator cannot be nil for NotificationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notifications: notifications,
		generator:     generator,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /notifications?unread_only&skip&limit.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	unreadOnly, err := shared.ParseBool(r, "unread_only")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	page, err := shared.ParsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	list, err := h.notifications.ListNotifications(r.Context(), actor, unreadOnly, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mapSlice(list, notificationToResponse))
}

// UnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to count notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// MarkRead handles PUT /notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, id, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to mark notification as read")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, notificationToResponse(n))
}

// DeleteNotification handles DELETE /notifications/{id}.
func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, id, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.notifications.DeleteNotification(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete notification")
		return
	}
	shared.RespondNoContent(w)
}

// CheckDueDates handles POST /notifications/check-due-dates. Owner role only.
func (h *NotificationHandler) CheckDueDates(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	summary, err := h.generator.Run(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate notifications")
		return
	}

	log.Info("due date check requested",
		slog.String("actor_id", actor.ID.String()),
		slog.Int("total", summary.Total))
	shared.RespondWithJSON(w, r, http.StatusOK, summaryToResponse(summary))
}
