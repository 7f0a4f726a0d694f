package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/service/auth"
)

// ActorLoader resolves the user a token was issued to.
type ActorLoader interface {
	GetActor(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthMiddleware authenticates bearer tokens and loads the acting user.
type AuthMiddleware struct {
	jwtService auth.JWTService
	actors     ActorLoader
	logger     *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(jwtService auth.JWTService, actors ActorLoader, logger *slog.Logger) *AuthMiddleware {
	if jwtService == nil || actors == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("jwtService and actors cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		actors:     actors,
		logger:     logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the Authorization header, loads the active user the
// token belongs to and stores it in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), m.logger)

		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, r, "Not authenticated")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				unauthorized(w, r, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrTokenNotYetValid):
				unauthorized(w, r, "Could not validate credentials")
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		actor, err := m.actors.GetActor(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredentials) {
				log.Debug("token for unknown or inactive user",
					slog.String("user_id", claims.UserID.String()))
				unauthorized(w, r, "Could not validate credentials")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			return
		}

		ctx := shared.WithActor(r.Context(), actor)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", actor.ID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	shared.RespondWithError(w, r, http.StatusUnauthorized, message)
}

// GetActor returns the authenticated user stored by Authenticate.
func GetActor(r *http.Request) (*domain.User, bool) {
	return shared.ActorFromContext(r.Context())
}
