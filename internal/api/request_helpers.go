package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
)

// requireActor returns the authenticated user or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		logger.FromContext(r.Context()).Warn("actor not found in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return actor, true
}

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handleActorAndPathUUID resolves both the actor and a path ID, writing
// the error response when either is missing.
func handleActorAndPathUUID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (*domain.User, uuid.UUID, bool) {
	actor, ok := requireActor(w, r)
	if !ok {
		return nil, uuid.Nil, false
	}

	id, err := getPathUUID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", redact.String(chi.URLParam(r, paramName))))
		HandleAPIError(w, r, err, "")
		return nil, uuid.Nil, false
	}
	return actor, id, true
}

// decodeAndValidate reads a JSON body into req and runs struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any, log *slog.Logger) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		log.Debug("invalid request body", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
