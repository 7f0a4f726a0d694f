package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service"
)

// UserHandler serves the /users routes.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil for UserHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetCurrent(r.Context(), actor)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// ListUsers handles GET /users.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	page, err := shared.ParsePage(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	users, err := h.users.ListUsers(r.Context(), actor, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, mapSlice(users, userToResponse))
}

// CreateUser handles POST /users. Owner role only.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req CreateUserRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.CreateUser(r.Context(), actor, req.Email, req.Password, role)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}
