package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"campus-gms/models"
)

// Message types pushed to clients.
const (
	TypeIssueCreated = "issue_created"
	TypeIssueStatus  = "issue_status"
	TypePing         = "ping"
	TypePong         = "pong"
	TypeError        = "error"
)

// Client represents a connected WebSocket client
type Client struct {
	Hub  *Hub
	ID   uint
	Role models.UserRole
	Conn *websocket.Conn
	Send chan []byte
}

// Message is the JSON frame exchanged with clients
type Message struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// MessageHandler handles one inbound message type
type MessageHandler func(*Client, *Message) error

type delivery struct {
	data []byte
	to   func(*Client) bool
}

// Hub manages all WebSocket connections. A user may hold several
// connections at once.
type Hub struct {
	clients map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	broadcast  chan delivery
	count      chan chan int
	done       chan struct{}

	MessageHandlers map[string]MessageHandler

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger) *Hub {
	hub := &Hub{
		clients:         make(map[*Client]bool),
		Register:        make(chan *Client),
		Unregister:      make(chan *Client),
		broadcast:       make(chan delivery, 64),
		count:           make(chan chan int),
		done:            make(chan struct{}),
		MessageHandlers: make(map[string]MessageHandler),
		logger:          logger,
	}
	hub.MessageHandlers[TypePing] = hub.handlePing
	return hub
}

// Run owns the client set until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.logger.Info("🔌 WebSocket hub stopped")
			return

		case client := <-h.Register:
			h.clients[client] = true
			h.logger.Info("🔌 Client registered", zap.Uint("user_id", client.ID), zap.String("role", string(client.Role)))

		case client := <-h.Unregister:
			if h.clients[client] {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("🔌 Client unregistered", zap.Uint("user_id", client.ID))
			}

		case d := <-h.broadcast:
			for client := range h.clients {
				if !d.to(client) {
					continue
				}
				select {
				case client.Send <- d.data:
				default:
					// too slow to keep up; the client reconnects
					h.logger.Warn("⚠️ Dropping slow client", zap.Uint("user_id", client.ID))
					delete(h.clients, client)
					close(client.Send)
				}
			}

		case reply := <-h.count:
			reply <- len(h.clients)
		}
	}
}

func (h *Hub) publish(msg *Message, to func(*Client) bool) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("❌ Error marshaling message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- delivery{data: data, to: to}:
	case <-h.done:
	default:
		h.logger.Warn("⚠️ Broadcast queue full, message dropped", zap.String("type", msg.Type))
	}
}

// BroadcastToStaff sends msg to every responder and admin.
func (h *Hub) BroadcastToStaff(msg *Message) {
	h.publish(msg, func(c *Client) bool {
		return c.Role == models.RoleResponder || c.Role == models.RoleAdmin
	})
}

// SendToUser sends msg to every connection of userID.
func (h *Hub) SendToUser(userID uint, msg *Message) {
	h.publish(msg, func(c *Client) bool { return c.ID == userID })
}

// ConnectedClients returns the number of open connections.
func (h *Hub) ConnectedClients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// handlePing handles ping messages for connection health
func (h *Hub) handlePing(client *Client, _ *Message) error {
	client.SendMessage(&Message{Type: TypePong, Timestamp: time.Now()})
	return nil
}
