package websocket

import (
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"campus-gms/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// NewUpgrader accepts requests without an Origin header (native clients)
// and browsers on one of allowedOrigins.
func NewUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")
		},
	}
}

// ServeWebSocket upgrades the connection and registers user with the hub
func ServeWebSocket(hub *Hub, upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request, user *models.User) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Warn("❌ WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		Hub:  hub,
		ID:   user.ID,
		Role: user.Role,
		Conn: conn,
		Send: make(chan []byte, 256),
	}
	select {
	case hub.Register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("❌ WebSocket read error", zap.Uint("user_id", c.ID), zap.Error(err))
			}
			return
		}

		var message Message
		if err := json.Unmarshal(raw, &message); err != nil {
			c.SendError("invalid_message", "message must be JSON")
			continue
		}

		handler, ok := c.Hub.MessageHandlers[message.Type]
		if !ok {
			c.SendError("unknown_type", "unsupported message type: "+message.Type)
			continue
		}
		if err := handler(c, &message); err != nil {
			c.Hub.logger.Warn("❌ Error handling message", zap.String("type", message.Type), zap.Error(err))
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage queues a message for this client only. Delivery goes
// through the hub, which owns the Send channel.
func (c *Client) SendMessage(message *Message) {
	c.Hub.publish(message, func(other *Client) bool { return other == c })
}

// SendError sends an error message to the client
func (c *Client) SendError(errorType, message string) {
	c.SendMessage(&Message{
		Type: TypeError,
		Data: map[string]any{
			"error_type": errorType,
			"message":    message,
		},
		Timestamp: time.Now(),
	})
}
