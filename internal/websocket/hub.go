package websocket

import "github.com/rs/zerolog/log"

// delivery is a message addressed to a set of user IDs.
type delivery struct {
	audience []string
	message  []byte
}

// Hub maintains the set of active clients and routes messages to them.
// All maps are owned by the Run goroutine.
type Hub struct {
	// Registered clients.
	clients map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Messages addressed to specific users.
	deliver chan delivery

	// A map of user IDs to the clients they have open.
	subscriptions map[string]map[*Client]bool

	done chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		deliver:       make(chan delivery, 256),
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		done:          make(chan struct{}),
	}
}

// Run starts the Hub's message processing loop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.clients[client] = true
			h.addSubscription(client)
			log.Info().Int("total_clients", len(h.clients)).Str("user_id", client.UserID).Msg("Client connected")
		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				log.Info().Int("total_clients", len(h.clients)).Str("user_id", client.UserID).Msg("Client disconnected")
			}
		case d := <-h.deliver:
			for client := range h.recipients(d.audience) {
				select {
				case client.Send <- d.message:
				default:
					h.drop(client)
				}
			}
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.done)
}

// Publish queues message for every client of the given users and for every
// admin client. It never blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(audience []string, message []byte) {
	select {
	case h.deliver <- delivery{audience: audience, message: message}:
	default:
		log.Warn().Int("audience", len(audience)).Msg("Websocket delivery queue full, dropping message")
	}
}

// Attach registers client and starts its pumps. It reports false and closes
// the connection if the hub has already stopped.
func (h *Hub) Attach(client *Client) bool {
	select {
	case h.Register <- client:
	case <-h.done:
		client.conn.Close()
		return false
	}
	go client.WritePump()
	go client.ReadPump()
	return true
}

// unregister removes client unless the hub has already stopped.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) recipients(audience []string) map[*Client]bool {
	out := make(map[*Client]bool)
	for client := range h.clients {
		if client.Admin {
			out[client] = true
		}
	}
	for _, userID := range audience {
		for client := range h.subscriptions[userID] {
			out[client] = true
		}
	}
	return out
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	h.removeSubscription(client)
}

func (h *Hub) addSubscription(client *Client) {
	if h.subscriptions[client.UserID] == nil {
		h.subscriptions[client.UserID] = make(map[*Client]bool)
	}
	h.subscriptions[client.UserID][client] = true
}

func (h *Hub) removeSubscription(client *Client) {
	if subs, ok := h.subscriptions[client.UserID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscriptions, client.UserID)
		}
	}
}
