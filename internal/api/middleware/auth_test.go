package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/domain"
	"github.com/phrazzld/tasker-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubJWTService validates tokens through a lookup table.
type stubJWTService struct {
	tokens map[string]*auth.Claims
	errs   map[string]error
}

func (s *stubJWTService) GenerateToken(context.Context, uuid.UUID) (string, error) {
	return "", errors.New("not used")
}

func (s *stubJWTService) GenerateRefreshToken(context.Context, uuid.UUID) (string, error) {
	return "", errors.New("not used")
}

func (s *stubJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	if err, ok := s.errs[token]; ok {
		return nil, err
	}
	if claims, ok := s.tokens[token]; ok {
		return claims, nil
	}
	return nil, auth.ErrInvalidToken
}

func (s *stubJWTService) ValidateRefreshToken(context.Context, string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidRefreshToken
}

func (s *stubJWTService) AccessTokenLifetime() time.Duration { return time.Hour }

type stubActors map[uuid.UUID]*domain.User

func (s stubActors) GetActor(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := s[id]; ok {
		if !u.IsActive {
			return nil, domain.ErrInvalidCredentials
		}
		return u, nil
	}
	return nil, domain.ErrInvalidCredentials
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	active := &domain.User{ID: uuid.New(), Email: "a@example.com", Role: domain.RoleMember, IsActive: true}
	inactive := &domain.User{ID: uuid.New(), Email: "b@example.com", Role: domain.RoleMember}
	broken := uuid.New()

	jwtService := &stubJWTService{
		tokens: map[string]*auth.Claims{
			"good":     {UserID: active.ID},
			"inactive": {UserID: inactive.ID},
			"broken":   {UserID: broken},
		},
		errs: map[string]error{
			"expired": auth.ErrExpiredToken,
			"refresh": auth.ErrWrongTokenType,
			"future":  auth.ErrTokenNotYetValid,
			"crash":   errors.New("key store unavailable"),
		},
	}
	actors := actorLoaderFunc(func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
		if id == broken {
			return nil, errors.New("connection reset")
		}
		return stubActors{active.ID: active, inactive.ID: inactive}.GetActor(ctx, id)
	})
	mw := NewAuthMiddleware(jwtService, actors, slog.New(slog.NewTextHandler(io.Discard, nil)))

	var seen *domain.User
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetActor(r)
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		header      string
		wantStatus  int
		wantMessage string
	}{
		{"valid", "Bearer good", http.StatusOK, ""},
		{"lowercase scheme", "bearer good", http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "Not authenticated"},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, "Not authenticated"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "Not authenticated"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "Could not validate credentials"},
		{"expired", "Bearer expired", http.StatusUnauthorized, "Token expired"},
		{"refresh token", "Bearer refresh", http.StatusUnauthorized, "Could not validate credentials"},
		{"not yet valid", "Bearer future", http.StatusUnauthorized, "Could not validate credentials"},
		{"inactive user", "Bearer inactive", http.StatusUnauthorized, "Could not validate credentials"},
		{"validator failure", "Bearer crash", http.StatusInternalServerError, "Authentication error"},
		{"lookup failure", "Bearer broken", http.StatusInternalServerError, "Authentication error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				require.NotNil(t, seen)
				assert.Equal(t, active.ID, seen.ID)
				return
			}

			assert.Nil(t, seen)
			var body shared.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantMessage, body.Error)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

type actorLoaderFunc func(ctx context.Context, id uuid.UUID) (*domain.User, error)

func (f actorLoaderFunc) GetActor(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return f(ctx, id)
}

func TestNewAuthMiddleware_RequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewAuthMiddleware(nil, stubActors{}, nil) })
	assert.Panics(t, func() { NewAuthMiddleware(&stubJWTService{}, nil, nil) })
}
