package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// HealthHandler reports whether the store is reachable.
type HealthHandler struct {
	ping func(ctx context.Context) error
	res  *Responder
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(ping func(ctx context.Context) error, res *Responder) *HealthHandler {
	return &HealthHandler{ping: ping, res: res}
}

// Check pings the store.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		log.Error().Err(err).Msg("Health check failed")
		h.res.JSON(w, http.StatusServiceUnavailable, Envelope{Message: "Database tidak tersedia"})
		return
	}
	h.res.JSON(w, http.StatusOK, Envelope{Success: true, Message: "ok"})
}
