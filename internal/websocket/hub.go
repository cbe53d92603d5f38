package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/verdantia/storefront-backend/internal/cart"
	"github.com/verdantia/storefront-backend/pkg/logger"
)

const (
	// Client messages accepted per second before they are ignored
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// ClientMessage is a message sent by the browser
type ClientMessage struct {
	Type string `json:"type"` // ping
}

// Client is one websocket connection bound to a cart session
type Client struct {
	Hub           *Hub
	Conn          *Conn
	SessionID     string
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

func NewClient(hub *Hub, conn *Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		SessionID: sessionID,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// Hub fans cart notifications out to every connection of a session.
// A session may have several tabs open.
type Hub struct {
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	mu sync.RWMutex
}

type BroadcastMessage struct {
	SessionID string
	Message   []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			sessions := len(h.clients[client.SessionID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"session_id":  client.SessionID,
				"connections": sessions,
			})

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients[message.SessionID] {
				select {
				case client.Send <- message.Message:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"session_id": message.SessionID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	list, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	remaining := make([]*Client, 0, len(list))
	found := false
	for _, c := range list {
		if c == client {
			found = true
			continue
		}
		remaining = append(remaining, c)
	}
	if !found {
		return
	}
	if len(remaining) == 0 {
		delete(h.clients, client.SessionID)
	} else {
		h.clients[client.SessionID] = remaining
	}
	close(client.Send)

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"session_id":  client.SessionID,
		"connections": len(remaining),
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, list := range h.clients {
		for _, c := range list {
			close(c.Send)
		}
		delete(h.clients, id)
	}
}

// SendToSession queues message for every connection of sessionID.
// Messages are dropped when the broadcast queue is full.
func (h *Hub) SendToSession(sessionID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal message", err)
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{SessionID: sessionID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"session_id": sessionID,
		})
	}
	return nil
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsSessionOnline reports whether sessionID has at least one open connection
func (h *Hub) IsSessionOnline(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[sessionID]
	return ok
}

// HandleClientMessage answers pings and rate limits everything else
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"session_id": client.SessionID,
			"count":      count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		return
	}

	if msg.Type == "ping" {
		data, _ := json.Marshal(map[string]string{"type": "pong"})
		select {
		case client.Send <- data:
		default:
		}
	}
}

// NotificationMessage is the payload pushed for each cart toast
type NotificationMessage struct {
	Type string `json:"type"`
	cart.Notification
}

// HubNotifier pushes cart notifications to the session's open connections.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) Notify(_ context.Context, note cart.Notification) {
	logger.Debug("Cart notification", map[string]interface{}{
		"session_id": note.SessionID,
		"command":    note.Command,
		"level":      note.Level,
	})
	if !n.hub.IsSessionOnline(note.SessionID) {
		return
	}
	n.hub.SendToSession(note.SessionID, NotificationMessage{Type: "cart_notification", Notification: note})
}
