package services

import (
	"slices"

	"go.uber.org/zap"

	"grapheditor/domain/config"
	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/selection"
	pkgerrors "grapheditor/pkg/errors"
)

// CanvasOps translates canvas gestures into graph mutations. Every method
// mutates the graph it is given; callers pass a working copy and enforce the
// element limit on the result.
type CanvasOps struct {
	config *config.DomainConfig
	logger *zap.Logger
}

// NewCanvasOps creates the canvas operations
func NewCanvasOps(cfg *config.DomainConfig, logger *zap.Logger) *CanvasOps {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &CanvasOps{config: cfg, logger: logger}
}

// AddNode places a node where the background was double-tapped
func (c *CanvasOps) AddNode(g *aggregates.Graph, pos valueobjects.Position) (string, error) {
	id, err := g.AddNode(pos)
	if err != nil {
		return "", err
	}
	c.logger.Debug("Node added", zap.String("nodeID", id), zap.Float64("x", pos.X()), zap.Float64("y", pos.Y()))
	return id, nil
}

// DeleteNode removes a double-tapped node and the incident edges the canvas
// reported with the event
func (c *CanvasOps) DeleteNode(g *aggregates.Graph, id string, incident []entities.Element) ([]valueobjects.EdgeKey, error) {
	removed, err := g.DeleteNodeWithIncident(id, incident)
	if err != nil {
		return nil, err
	}
	if len(removed) != len(incident) {
		c.logger.Debug("Reported incident edges did not all match",
			zap.String("nodeID", id),
			zap.Int("reported", len(incident)),
			zap.Int("removed", len(removed)),
		)
	}
	return removed, nil
}

// DeleteEdge removes a double-tapped edge
func (c *CanvasOps) DeleteEdge(g *aggregates.Graph, source, target string) error {
	return g.DeleteEdge(source, target)
}

// MoveNode places a dragged node. When the node is part of a multi-node
// selection the other selected nodes follow by the same offset. It returns
// the ids of every node that moved.
func (c *CanvasOps) MoveNode(g *aggregates.Graph, id string, pos valueobjects.Position, sel selection.Snapshot) ([]string, error) {
	dx, dy, err := g.MoveNode(id, pos)
	if err != nil {
		return nil, err
	}
	moved := []string{id}
	if dx == 0 && dy == 0 {
		return moved, nil
	}

	if sel.ContainsNode(id) && len(sel.Nodes) > 1 {
		others := slices.DeleteFunc(sel.NodeIDs(), func(n string) bool { return n == id })
		if err := g.TranslateNodes(others, dx, dy); err != nil {
			return nil, err
		}
		moved = append(moved, others...)
	}
	g.RecordMove(moved, dx, dy)
	return moved, nil
}

// RebindEdge turns a finished edge-draw gesture into an edge
func (c *CanvasOps) RebindEdge(g *aggregates.Graph, source, target string) error {
	if source == target && !c.config.AllowSelfLoops {
		return pkgerrors.NewValidationError("self loops are not allowed").WithCode("SELF_LOOP")
	}
	if err := g.AddEdge(source, target, nil); err != nil {
		return err
	}
	c.logger.Debug("Edge added", zap.String("source", source), zap.String("target", target))
	return nil
}
