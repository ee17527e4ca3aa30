package server

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Message is the JSON envelope for all real-time traffic to clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub maintains the set of connected clients for one match and fans
// broadcast messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	logger     zerolog.Logger
}

// NewHub creates a hub; the caller runs it with go hub.Run().
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "hub").Logger(),
	}
}

// Run pumps registrations and broadcasts until Stop. Clients that cannot
// keep up with the broadcast stream are dropped.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug().Str("player_id", client.playerID).Msg("Client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug().Str("player_id", client.playerID).Msg("Client unregistered")
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast marshals the message and queues it for every client. A no-op
// once the hub has stopped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal broadcast")
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Stop terminates Run and disconnects every client. Idempotent.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}
