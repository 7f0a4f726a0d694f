package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/tasker-api/internal/api/shared"
	"github.com/phrazzld/tasker-api/internal/platform/logger"
	"github.com/phrazzld/tasker-api/internal/redact"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// healthCheckTimeout bounds the database ping.
const healthCheckTimeout = 2 * time.Second

var errNoDatabase = errors.New("no database configured")

// Pinger checks connectivity to a dependency. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service and database status.
type HealthHandler struct {
	db       Pinger
	timeFunc func() time.Time
	logger   *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:       db,
		timeFunc: time.Now,
		logger:   logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health. It always answers 200; a failed database
// ping reports the service as degraded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: h.timeFunc().UTC().Format(time.RFC3339Nano),
		Version:   Version,
		Database:  "healthy",
	}

	if err := h.ping(r.Context()); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Warn("database health check failed",
			slog.String("error", redact.Error(err)))
		resp.Status = "degraded"
		resp.Database = "unhealthy"
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.db == nil {
		return errNoDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return h.db.PingContext(ctx)
}
