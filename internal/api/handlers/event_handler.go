package handlers

import (
	"net/http"
	"strconv"

	"github.com/isdelr/taskflow-be/internal/services"
)

// EventHandler handles HTTP requests related to the activity log.
type EventHandler struct {
	service services.EventServiceProvider
	res     *Responder
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider, res *Responder) *EventHandler {
	return &EventHandler{service: service, res: res}
}

// GetRecent handles the request to get recent activity. ?limit= defaults to
// services.DefaultEventLimit.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = services.DefaultEventLimit
	}

	events, err := h.service.GetRecentEvents(r.Context(), limit)
	if err != nil {
		h.res.Error(w, r, err, "Gagal mendapatkan aktivitas")
		return
	}
	h.res.List(w, events, len(events))
}
