package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message types pushed to clients
const (
	TypeConnectionEstablished = "CONNECTION_ESTABLISHED"
	TypeSessionView           = "SESSION_VIEW"
	TypeAck                   = "ACK"
	TypeError                 = "ERROR"
	TypePing                  = "PING"
)

// ConnectionMetrics counts open connections
type ConnectionMetrics interface {
	ConnectionOpened()
	ConnectionClosed()
}

// OutboundMessage is the envelope of every message sent to a client
type OutboundMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

type broadcastMessage struct {
	sessionID string
	payload   []byte
}

// Hub tracks the connections attached to each editing session and fans
// session views out to them
type Hub struct {
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
	// done is closed once Run has returned
	done chan struct{}

	metrics ConnectionMetrics
	logger  *zap.Logger
}

// NewHub creates a new WebSocket hub. metrics may be nil.
func NewHub(metrics ConnectionMetrics, logger *zap.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		register:   make(chan *Client, 100),
		unregister: make(chan *Client, 100),
		broadcast:  make(chan broadcastMessage, 1000),
		done:       make(chan struct{}),
		metrics:    metrics,
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAllConnections()
			close(h.done)
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToSession(message)

		case <-ticker.C:
			h.performHealthCheck()
		}
	}
}

// NotifySession pushes a message to every client of a session. It never
// blocks the caller; when the hub is saturated the message is dropped.
func (h *Hub) NotifySession(sessionID string, message interface{}) {
	payload, err := encode(TypeSessionView, "", message)
	if err != nil {
		h.logger.Error("Failed to marshal session message",
			zap.String("sessionID", sessionID),
			zap.Error(err),
		)
		return
	}

	select {
	case h.broadcast <- broadcastMessage{sessionID: sessionID, payload: payload}:
	default:
		h.logger.Warn("Broadcast channel full, message dropped", zap.String("sessionID", sessionID))
	}
}

// join registers a client; it reports false once the hub has stopped
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters a client without blocking on a stopped hub
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// deliver queues payload for client unless its send channel is closed or
// full. It reports whether the payload was queued.
func (h *Hub) deliver(client *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if client.closed {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend must be called with h.mu held for writing
func (h *Hub) closeSend(client *Client) {
	if client.closed {
		return
	}
	client.closed = true
	close(client.send)
}

// ConnectionCount returns the number of clients attached to a session
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	if h.metrics != nil {
		h.metrics.ConnectionOpened()
	}

	h.logger.Info("Client registered",
		zap.String("sessionID", client.sessionID),
		zap.String("connectionID", client.id),
		zap.Int("sessionConnections", len(h.sessions[client.sessionID])),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	h.closeSend(client)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	if h.metrics != nil {
		h.metrics.ConnectionClosed()
	}

	h.logger.Info("Client unregistered",
		zap.String("sessionID", client.sessionID),
		zap.String("connectionID", client.id),
		zap.Int("remainingConnections", len(clients)),
	)
}

func (h *Hub) broadcastToSession(message broadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.sessions[message.sessionID]
	if len(clients) == 0 {
		return
	}

	for client := range clients {
		select {
		case client.send <- message.payload:
		default:
			h.logger.Warn("Closing slow client",
				zap.String("sessionID", client.sessionID),
				zap.String("connectionID", client.id),
			)
			go func(c *Client) {
				h.leave(c)
				c.conn.Close()
			}(client)
		}
	}
}

func (h *Hub) performHealthCheck() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ping, _ := encode(TypePing, "", nil)
	total := 0
	for sessionID, clients := range h.sessions {
		total += len(clients)
		for client := range clients {
			select {
			case client.send <- ping:
			default:
				h.logger.Warn("Failed to ping client",
					zap.String("sessionID", sessionID),
					zap.String("connectionID", client.id),
				)
			}
		}
	}

	h.logger.Debug("Health check performed",
		zap.Int("totalConnections", total),
		zap.Int("totalSessions", len(h.sessions)),
	)
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, clients := range h.sessions {
		for client := range clients {
			h.closeSend(client)
			client.conn.Close()
			if h.metrics != nil {
				h.metrics.ConnectionClosed()
			}
		}
		delete(h.sessions, sessionID)
	}

	h.logger.Info("All connections closed")
}

func encode(messageType, requestID string, data interface{}) ([]byte, error) {
	msg := OutboundMessage{
		Type:      messageType,
		RequestID: requestID,
		Timestamp: time.Now().Unix(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		msg.Data = raw
	}
	return json.Marshal(msg)
}
