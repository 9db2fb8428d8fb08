package websocket

import (
	"context"
	"net/http"

	pkgerrors "grapheditor/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionLookup loads the view a new connection starts from. It fails when
// the session does not exist.
type SessionLookup func(ctx context.Context, sessionID string) (interface{}, error)

// ServerConfig holds WebSocket server configuration
type ServerConfig struct {
	ReadBufferSize        int
	WriteBufferSize       int
	CheckOrigin           func(r *http.Request) bool
	MaxSessionConnections int
}

// DefaultServerConfig returns default WebSocket server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:        1024,
		WriteBufferSize:       1024,
		CheckOrigin:           func(r *http.Request) bool { return true },
		MaxSessionConnections: 10,
	}
}

// Server upgrades HTTP requests into session connections
type Server struct {
	hub          *Hub
	dispatcher   Dispatcher
	lookup       SessionLookup
	upgrader     websocket.Upgrader
	maxConns     int
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewServer creates a new WebSocket server
func NewServer(
	hub *Hub,
	dispatcher Dispatcher,
	lookup SessionLookup,
	config *ServerConfig,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}

	return &Server{
		hub:        hub,
		dispatcher: dispatcher,
		lookup:     lookup,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		maxConns:     config.MaxSessionConnections,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// HandleWebSocket handles GET /ws/{sessionID}
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	view, err := s.lookup(r.Context(), sessionID)
	if err != nil {
		s.errorHandler.Handle(w, r, err)
		return
	}

	if s.maxConns > 0 && s.hub.ConnectionCount(sessionID) >= s.maxConns {
		s.logger.Warn("Connection limit exceeded for session",
			zap.String("sessionID", sessionID),
			zap.Int("currentConnections", s.hub.ConnectionCount(sessionID)),
		)
		s.errorHandler.HandleStatus(w, r, http.StatusTooManyRequests, "connection limit exceeded")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the response
		s.logger.Warn("Failed to upgrade connection",
			zap.Error(err),
			zap.String("remoteAddr", r.RemoteAddr),
		)
		return
	}

	client := NewClient(sessionID, s.hub, conn, s.dispatcher, s.logger)
	client.Start(view)

	s.logger.Info("New WebSocket connection established",
		zap.String("sessionID", sessionID),
		zap.String("connectionID", client.ID()),
		zap.String("remoteAddr", r.RemoteAddr),
	)
}
