package server

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// clientCommand is the inbound wire format from a connected player.
type clientCommand struct {
	Type   string `json:"type"` // "attack" or "end_turn"
	FromID int    `json:"fromId"`
	ToID   int    `json:"toId"`
}

// Client is a single websocket connection bound to a match and a player
// identity.
type Client struct {
	hub      *Hub
	match    *Match
	playerID string
	conn     *websocket.Conn
	send     chan []byte
	logger   zerolog.Logger
}

// NewClient wires a websocket connection into the match's hub. The
// caller starts the pumps.
func NewClient(match *Match, playerID string, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		hub:      match.hub,
		match:    match,
		playerID: playerID,
		conn:     conn,
		send:     make(chan []byte, 256),
		logger:   logger.With().Str("component", "client").Str("player_id", playerID).Logger(),
	}
}

// Start registers the client and launches its read/write pumps. If the
// hub has already stopped the connection is closed instead.
func (c *Client) Start() {
	select {
	case c.hub.register <- c:
	case <-c.hub.done:
		c.conn.Close()
		return
	}
	go c.writePump()
	go c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.logger.Debug().Err(err).Msg("Read loop ended")
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.sendError("malformed command")
			continue
		}
		c.dispatch(cmd)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) dispatch(cmd clientCommand) {
	switch cmd.Type {
	case "attack":
		result := c.match.Attack(cmd.FromID, cmd.ToID, c.playerID)
		c.sendMessage(Message{Type: "attack_result", Payload: result})
	case "end_turn":
		if err := c.match.EndTurn(c.playerID); err != nil {
			c.sendError(err.Error())
		}
	default:
		c.sendError("unknown command type")
	}
}

func (c *Client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to marshal message")
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendError(reason string) {
	c.sendMessage(Message{Type: "error", Payload: reason})
}
