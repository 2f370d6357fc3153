// Package handlers implements the HTTP endpoints of the API surface.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ryanlattanzi/algo-trading/internal/api/response"
)

// Pinger is the slice of a connection pool the readiness probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db      Pinger // nil when no database backend is configured
	version string
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health reports process liveness.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, r, map[string]string{
		"status":  "ok",
		"version": h.version,
	})
}

// Ready reports whether the storage backend is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			response.Error(w, r, http.StatusServiceUnavailable, response.ErrCodeInternalServer, "database unreachable")
			return
		}
	}
	response.Success(w, r, map[string]string{"status": "ready"})
}
