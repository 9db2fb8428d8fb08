package websocket

import (
	"context"
	"encoding/json"
	"time"

	"grapheditor/pkg/common"
	pkgerrors "grapheditor/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; imports travel over REST
	maxMessageSize = 512 * 1024

	sendBufferSize = 256

	dispatchTimeout = 30 * time.Second
)

// InboundMessage is a canvas or panel event sent by a client
type InboundMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Dispatcher executes inbound events against a session. The returned value,
// when not nil, is sent back to the client with the acknowledgement.
type Dispatcher interface {
	Dispatch(ctx context.Context, sessionID string, msg InboundMessage) (interface{}, error)
}

// ErrorData is the payload of an ERROR message
type ErrorData struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Client is one websocket connection attached to an editing session
type Client struct {
	id         string
	sessionID  string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	dispatcher Dispatcher
	logger     *zap.Logger

	// closed is guarded by hub.mu and set when send is closed
	closed bool
}

// NewClient creates a new WebSocket client
func NewClient(sessionID string, hub *Hub, conn *websocket.Conn, dispatcher Dispatcher, logger *zap.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:         id,
		sessionID:  sessionID,
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		dispatcher: dispatcher,
		logger: logger.With(
			zap.String("sessionID", sessionID),
			zap.String("connectionID", id),
		),
	}
}

// Start registers the client and begins its read and write pumps. initial,
// when not nil, is queued as the first session view.
func (c *Client) Start(initial interface{}) {
	if !c.hub.join(c) {
		c.logger.Warn("Hub stopped, connection refused")
		c.conn.Close()
		return
	}

	c.reply(TypeConnectionEstablished, "", map[string]string{
		"connection_id": c.id,
		"session_id":    c.sessionID,
	})
	if initial != nil {
		c.reply(TypeSessionView, "", initial)
	}

	go c.writePump()
	go c.readPump()
}

// ID returns the connection ID
func (c *Client) ID() string {
	return c.id
}

func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
		c.logger.Debug("Read pump stopped")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket read error", zap.Error(err))
			}
			return
		}

		switch messageType {
		case websocket.TextMessage:
			c.handleTextMessage(message)
		case websocket.BinaryMessage:
			c.logger.Warn("Binary messages not supported")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.Debug("Write pump stopped")
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Failed to send ping", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) handleTextMessage(raw []byte) {
	var msg InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.replyError("", pkgerrors.NewValidationError("message is not valid JSON").WithCause(err))
		return
	}
	if msg.Type == "pong" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	ctx = common.EnrichContext(ctx, c.sessionID, msg.RequestID)
	ctx = common.WithConnectionID(ctx, c.id)

	result, err := c.dispatcher.Dispatch(ctx, c.sessionID, msg)
	if err != nil {
		meta := common.ExtractMetadata(ctx)
		c.logger.Debug("Event rejected",
			zap.String("event", msg.Type),
			zap.String("sessionID", meta.SessionID),
			zap.String("requestID", meta.RequestID),
			zap.String("connectionID", meta.ConnectionID),
			zap.Duration("elapsed", meta.Duration),
			zap.Error(err),
		)
		c.replyError(msg.RequestID, err)
		return
	}
	c.reply(TypeAck, msg.RequestID, result)
}

func (c *Client) replyError(requestID string, err error) {
	data := ErrorData{Type: string(pkgerrors.ErrorTypeInternal), Message: "An internal error occurred"}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		data = ErrorData{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
	}
	c.reply(TypeError, requestID, data)
}

// reply queues a message for this client only
func (c *Client) reply(messageType, requestID string, data interface{}) {
	payload, err := encode(messageType, requestID, data)
	if err != nil {
		c.logger.Error("Failed to marshal reply", zap.String("type", messageType), zap.Error(err))
		return
	}
	if !c.hub.deliver(c, payload) {
		c.logger.Warn("Reply dropped", zap.String("type", messageType))
	}
}
