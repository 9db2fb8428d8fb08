package handlers

import (
	"net/http"

	"grapheditor/application/commands"
	"grapheditor/application/commands/bus"
	querybus "grapheditor/application/queries/bus"
	"grapheditor/domain/session"
	"grapheditor/interfaces/http/rest/dto"
	pkgerrors "grapheditor/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SessionHandler serves the editing session and every canvas and panel event
type SessionHandler struct {
	base
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *SessionHandler {
	return &SessionHandler{base{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}}
}

// SessionRoutes mounts the endpoints under /sessions/{sessionID}
func (h *SessionHandler) SessionRoutes(r chi.Router) {
	r.Get("/", h.GetSession)
	r.Delete("/", h.DeleteSession)

	r.Put("/selection", h.ChangeSelection)
	r.Post("/nodes", h.AddNode)
	r.Delete("/nodes/{nodeID}", h.DeleteNode)
	r.Put("/nodes/{nodeID}/position", h.MoveNode)
	r.Post("/edges", h.RebindEdge)
	r.Delete("/edges/{source}/{target}", h.DeleteEdge)

	r.Post("/attributes", h.AddAttribute)
	r.Post("/attributes/confirm", h.ConfirmEdit)
	r.Post("/attributes/remove", h.RemoveAttribute)
	r.Put("/label", h.EditLabel)
	r.Post("/rows/{rowKey}/edit", h.OpenRowEdit)
	r.Post("/rows/{rowKey}/cancel", h.CancelRowEdit)

	r.Post("/undo", h.Undo)
	r.Post("/redo", h.Redo)
	r.Post("/reset", h.NewGraph)
	r.Put("/directed", h.SetDirected)
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	cmd := &commands.CreateSessionCommand{SessionID: req.SessionID, Directed: true}
	if cmd.SessionID == "" {
		cmd.SessionID = session.NewID().String()
	}
	if req.Directed != nil {
		cmd.Directed = *req.Directed
	}

	if !h.send(w, r, cmd) {
		return
	}

	h.logger.Info("Session created", zap.String("sessionID", cmd.SessionID), zap.Bool("directed", cmd.Directed))
	w.Header().Set("Location", "/api/sessions/"+cmd.SessionID)
	h.respondView(w, r, cmd.SessionID, http.StatusCreated)
}

// GetSession handles GET /sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.respondView(w, r, sessionParam(r), http.StatusOK)
}

// DeleteSession handles DELETE /sessions/{sessionID}
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.send(w, r, &commands.DeleteSessionCommand{SessionID: sessionParam(r)}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangeSelection handles PUT /sessions/{sessionID}/selection
func (h *SessionHandler) ChangeSelection(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.ChangeSelectionCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// AddNode handles POST /sessions/{sessionID}/nodes
func (h *SessionHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.AddNodeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// DeleteNode handles DELETE /sessions/{sessionID}/nodes/{nodeID}
func (h *SessionHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.DeleteNodeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
		c.NodeID = chi.URLParam(r, "nodeID")
	})(w, r)
}

// MoveNode handles PUT /sessions/{sessionID}/nodes/{nodeID}/position
func (h *SessionHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.MoveNodeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
		c.NodeID = chi.URLParam(r, "nodeID")
	})(w, r)
}

// RebindEdge handles POST /sessions/{sessionID}/edges
func (h *SessionHandler) RebindEdge(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.RebindEdgeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// DeleteEdge handles DELETE /sessions/{sessionID}/edges/{source}/{target}
func (h *SessionHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.DeleteEdgeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
		c.Source = chi.URLParam(r, "source")
		c.Target = chi.URLParam(r, "target")
	})(w, r)
}

// AddAttribute handles POST /sessions/{sessionID}/attributes
func (h *SessionHandler) AddAttribute(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.AddAttributeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// ConfirmEdit handles POST /sessions/{sessionID}/attributes/confirm
func (h *SessionHandler) ConfirmEdit(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.ConfirmEditCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// RemoveAttribute handles POST /sessions/{sessionID}/attributes/remove
func (h *SessionHandler) RemoveAttribute(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.RemoveAttributeCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// EditLabel handles PUT /sessions/{sessionID}/label
func (h *SessionHandler) EditLabel(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.EditLabelCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// OpenRowEdit handles POST /sessions/{sessionID}/rows/{rowKey}/edit
func (h *SessionHandler) OpenRowEdit(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.OpenRowEditCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
		c.RowKey = chi.URLParam(r, "rowKey")
	})(w, r)
}

// CancelRowEdit handles POST /sessions/{sessionID}/rows/{rowKey}/cancel
func (h *SessionHandler) CancelRowEdit(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.CancelRowEditCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
		c.RowKey = chi.URLParam(r, "rowKey")
	})(w, r)
}

// Undo handles POST /sessions/{sessionID}/undo
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.UndoCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// Redo handles POST /sessions/{sessionID}/redo
func (h *SessionHandler) Redo(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.RedoCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// NewGraph handles POST /sessions/{sessionID}/reset
func (h *SessionHandler) NewGraph(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.NewGraphCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}

// SetDirected handles PUT /sessions/{sessionID}/directed
func (h *SessionHandler) SetDirected(w http.ResponseWriter, r *http.Request) {
	sessionAction(&h.base, func(c *commands.SetDirectedCommand, r *http.Request) {
		c.SessionID = sessionParam(r)
	})(w, r)
}
