package handler

import (
	"context"
	"net/http"
	"time"

	apierrors "github.com/Karan-Salvi/FormVista-sub000/internal/pkg/errors"
	"github.com/Karan-Salvi/FormVista-sub000/internal/pkg/response"
)

const readyTimeout = 5 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Health handles GET /health. It succeeds whenever the process serves HTTP.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, r, map[string]string{"status": "ok"})
}

// Ready handles GET /ready by pinging PostgreSQL and Redis.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		response.Error(w, r, apierrors.ErrServiceUnavailable.
			WithDetails(map[string]string{"component": "database"}).
			WithCause(err))
		return
	}
	if err := h.redis.Ping(ctx); err != nil {
		response.Error(w, r, apierrors.ErrServiceUnavailable.
			WithDetails(map[string]string{"component": "redis"}).
			WithCause(err))
		return
	}

	response.OK(w, r, map[string]string{
		"status":   "ok",
		"database": "connected",
		"redis":    "connected",
	})
}
