package api

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
	"github.com/phrazzld/tasker-api/internal/service"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// AuthHandler issues and refreshes bearer tokens.
type AuthHandler struct {
	users      service.UserService
	jwtService auth.JWTService
	timeFunc   func() time.Time
	logger     *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users service.UserService, jwtService auth.JWTService, logger *slog.Logger) *AuthHandler {
	if users == nil || jwtService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users and jwtService cannot be nil for AuthHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:      users,
		jwtService: jwtService,
		timeFunc:   time.Now,
		logger:     logger.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /login/access-token. It accepts the OAuth2 password
// form (username, password) or the same fields as JSON.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	req, ok := h.readLoginRequest(w, r, log)
	if !ok {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Info("login failed", slog.String("username", redact.String(req.Username)))
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func (h *AuthHandler) readLoginRequest(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (LoginRequest, bool) {
	var req LoginRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseForm(); err != nil {
			log.Debug("invalid login form", slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
			return req, false
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
		if err := shared.ValidateRequest(&req); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
			return req, false
		}
		return req, true
	default:
		return req, decodeAndValidate(w, r, &req, log)
	}
}

// RefreshToken handles POST /auth/refresh. The refresh token must belong to
// a user that is still active.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req RefreshTokenRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidRefreshToken) &&
			!errors.Is(err, auth.ErrExpiredRefreshToken) &&
			!errors.Is(err, auth.ErrWrongTokenType) {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to refresh token", err)
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.GetActor(r.Context(), claims.UserID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	resp, err := h.issueTokens(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to refresh token", err)
		return
	}

	log.Debug("token refreshed", slog.String("user_id", user.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// issueTokens creates a fresh access and refresh token pair.
func (h *AuthHandler) issueTokens(ctx context.Context, userID uuid.UUID) (TokenResponse, error) {
	access, err := h.jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, err := h.jwtService.GenerateRefreshToken(ctx, userID)
	if err != nil {
		return TokenResponse{}, err
	}
	expiresAt := h.timeFunc().Add(h.jwtService.AccessTokenLifetime()).UTC()
	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt.Format(time.RFC3339),
	}, nil
}
