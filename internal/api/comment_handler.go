package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// CommentHandler serves comments nested under tasks.
type CommentHandler struct {
	comments service.CommentService
	logger   *slog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments service.CommentService, logger *slog.Logger) *CommentHandler {
	if comments == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("comments cannot be nil for CommentHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		comments: comments,
		logger:   logger.With(slog.String("component", "comment_handler")),
	}
}

// ListComments handles GET /tasks/{id}/comments.
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}
	page, err := shared.ParsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	comments, err := h.comments.ListComments(r.Context(), actor, taskID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list comments")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mapSlice(comments, commentToResponse))
}

// CreateComment handles POST /tasks/{id}/comments.
func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, taskID, ok := handleActorAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	// Content rules live in the service, which checks access first.
	var req CommentRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	comment, err := h.comments.CreateComment(r.Context(), actor, taskID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create comment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, commentToResponse(comment))
}

// UpdateComment handles PUT /tasks/comments/{commentID}.
func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, commentID, ok := handleActorAndPathUUID(w, r, "commentID", log)
	if !ok {
		return
	}

	var req CommentRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	comment, err := h.comments.UpdateComment(r.Context(), actor, commentID, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update comment")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, commentToResponse(comment))
}

// DeleteComment handles DELETE /tasks/comments/{commentID}.
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, commentID, ok := handleActorAndPathUUID(w, r, "commentID", log)
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(r.Context(), actor, commentID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete comment")
		return
	}
	shared.RespondNoContent(w)
}
