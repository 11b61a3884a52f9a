package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	ws "github.com/isdelr/taskflow-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocketHandler upgrades authenticated requests to activity streams.
type WebSocketHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	res      *Responder
}

// NewWebSocketHandler creates a new WebSocketHandler accepting upgrades
// from allowedOrigins. "*" allows any origin.
func NewWebSocketHandler(hub *ws.Hub, allowedOrigins []string, res *Responder) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &WebSocketHandler{
		hub: hub,
		res: res,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// Serve handles the WebSocket connection request.
func (h *WebSocketHandler) Serve(w http.ResponseWriter, r *http.Request) {
	me, err := currentUser(r)
	if err != nil {
		h.res.Fail(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade websocket connection")
		return
	}

	client := ws.NewClient(h.hub, conn, me.ID, me.IsAdmin())
	if !h.hub.Attach(client) {
		log.Warn().Str("user_id", me.ID).Msg("Websocket hub stopped, connection refused")
	}
}
