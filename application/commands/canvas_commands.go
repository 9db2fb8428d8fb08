package commands

import (
	"grapheditor/domain/core/entities"
	pkgerrors "grapheditor/pkg/errors"
	"grapheditor/pkg/utils"
)

// ChangeSelectionCommand carries the selection the canvas reports
type ChangeSelectionCommand struct {
	SessionID string                `json:"session_id" validate:"required"`
	Nodes     []entities.ElementRef `json:"nodes"`
	Edges     []entities.ElementRef `json:"edges"`
}

// Validate validates the command
func (c *ChangeSelectionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AddNodeCommand is a double tap on the canvas background
type AddNodeCommand struct {
	SessionID string  `json:"session_id" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Validate validates the command
func (c *AddNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteNodeCommand is a double tap on a node. IncidentEdges are the edges
// the canvas considered connected to it at event time.
type DeleteNodeCommand struct {
	SessionID     string             `json:"session_id" validate:"required"`
	NodeID        string             `json:"node_id" validate:"required"`
	IncidentEdges []entities.Element `json:"incident_edges"`
}

// Validate validates the command
func (c *DeleteNodeCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	for _, e := range c.IncidentEdges {
		if !e.IsEdge() {
			return pkgerrors.NewValidationErrorf("incident_edges contains %s", e.Ref())
		}
	}
	return nil
}

// DeleteEdgeCommand is a double tap on an edge
type DeleteEdgeCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Source    string `json:"source" validate:"required"`
	Target    string `json:"target" validate:"required"`
}

// Validate validates the command
func (c *DeleteEdgeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// MoveNodeCommand is the end of a node drag
type MoveNodeCommand struct {
	SessionID string  `json:"session_id" validate:"required"`
	NodeID    string  `json:"node_id" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Validate validates the command
func (c *MoveNodeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// RebindEdgeCommand is a finished edge-draw gesture
type RebindEdgeCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Source    string `json:"source" validate:"required"`
	Target    string `json:"target" validate:"required"`
}

// Validate validates the command
func (c *RebindEdgeCommand) Validate() error {
	return utils.ValidateStruct(c)
}
