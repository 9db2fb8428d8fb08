package events

import (
	"time"

	"grapheditor/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(graphID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: graphID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Event type names
const (
	TypeNodeAdded         = "node.added"
	TypeNodeDeleted       = "node.deleted"
	TypeNodesMoved        = "node.moved"
	TypeNodeRelabeled     = "node.relabeled"
	TypeEdgeAdded         = "edge.added"
	TypeEdgeDeleted       = "edge.deleted"
	TypeAttributesChanged = "attributes.changed"
	TypeGraphReset        = "graph.reset"
	TypeGraphLoaded       = "graph.loaded"
	TypeDirectedChanged   = "graph.directed_changed"
	TypeHistoryNavigated  = "history.navigated"
)

// Node Events

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   string                `json:"node_id"`
	Position valueobjects.Position `json:"position"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(graphID, nodeID string, pos valueobjects.Position, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(graphID, TypeNodeAdded, timestamp),
		NodeID:    nodeID,
		Position:  pos,
	}
}

// NodeDeleted is raised when a node and its reported incident edges are removed
type NodeDeleted struct {
	BaseEvent
	NodeID       string                 `json:"node_id"`
	RemovedEdges []valueobjects.EdgeKey `json:"removed_edges"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(graphID, nodeID string, removed []valueobjects.EdgeKey, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent:    newBase(graphID, TypeNodeDeleted, timestamp),
		NodeID:       nodeID,
		RemovedEdges: removed,
	}
}

// NodesMoved is raised when one node, or a selected group, is dragged
type NodesMoved struct {
	BaseEvent
	NodeIDs []string `json:"node_ids"`
	DX      float64  `json:"dx"`
	DY      float64  `json:"dy"`
}

// NewNodesMoved creates a NodesMoved event
func NewNodesMoved(graphID string, nodeIDs []string, dx, dy float64, timestamp time.Time) NodesMoved {
	return NodesMoved{
		BaseEvent: newBase(graphID, TypeNodesMoved, timestamp),
		NodeIDs:   nodeIDs,
		DX:        dx,
		DY:        dy,
	}
}

// NodeRelabeled is raised when a node label changes
type NodeRelabeled struct {
	BaseEvent
	NodeID   string `json:"node_id"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
}

// NewNodeRelabeled creates a NodeRelabeled event
func NewNodeRelabeled(graphID, nodeID, oldLabel, newLabel string, timestamp time.Time) NodeRelabeled {
	return NodeRelabeled{
		BaseEvent: newBase(graphID, TypeNodeRelabeled, timestamp),
		NodeID:    nodeID,
		OldLabel:  oldLabel,
		NewLabel:  newLabel,
	}
}

// Edge Events

// EdgeAdded is raised when two nodes are connected
type EdgeAdded struct {
	BaseEvent
	Edge valueobjects.EdgeKey `json:"edge"`
}

// NewEdgeAdded creates an EdgeAdded event
func NewEdgeAdded(graphID string, key valueobjects.EdgeKey, timestamp time.Time) EdgeAdded {
	return EdgeAdded{
		BaseEvent: newBase(graphID, TypeEdgeAdded, timestamp),
		Edge:      key,
	}
}

// EdgeDeleted is raised when an edge is removed
type EdgeDeleted struct {
	BaseEvent
	Edge valueobjects.EdgeKey `json:"edge"`
}

// NewEdgeDeleted creates an EdgeDeleted event
func NewEdgeDeleted(graphID string, key valueobjects.EdgeKey, timestamp time.Time) EdgeDeleted {
	return EdgeDeleted{
		BaseEvent: newBase(graphID, TypeEdgeDeleted, timestamp),
		Edge:      key,
	}
}

// Attribute Events

// AttributeChange describes what happened to a single attribute
type AttributeChange string

const (
	AttributeAdded    AttributeChange = "added"
	AttributeRenamed  AttributeChange = "renamed"
	AttributeRevalued AttributeChange = "revalued"
	AttributeRemoved  AttributeChange = "removed"
)

// AttributesChanged is raised once per batched edit across a selection
type AttributesChanged struct {
	BaseEvent
	Change       AttributeChange `json:"change"`
	Attribute    string          `json:"attribute"`
	NewName      string          `json:"new_name,omitempty"`
	ElementCount int             `json:"element_count"`
}

// NewAttributesChanged creates an AttributesChanged event
func NewAttributesChanged(graphID string, change AttributeChange, attribute, newName string, count int, timestamp time.Time) AttributesChanged {
	return AttributesChanged{
		BaseEvent:    newBase(graphID, TypeAttributesChanged, timestamp),
		Change:       change,
		Attribute:    attribute,
		NewName:      newName,
		ElementCount: count,
	}
}

// Graph Events

// GraphReset is raised when the user starts a new empty graph
type GraphReset struct {
	BaseEvent
}

// NewGraphReset creates a GraphReset event
func NewGraphReset(graphID string, timestamp time.Time) GraphReset {
	return GraphReset{BaseEvent: newBase(graphID, TypeGraphReset, timestamp)}
}

// GraphLoaded is raised when elements are replaced by an import, template or stored document
type GraphLoaded struct {
	BaseEvent
	Source    string `json:"source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	Directed  bool   `json:"directed"`
}

// NewGraphLoaded creates a GraphLoaded event
func NewGraphLoaded(graphID, source string, nodes, edges int, directed bool, timestamp time.Time) GraphLoaded {
	return GraphLoaded{
		BaseEvent: newBase(graphID, TypeGraphLoaded, timestamp),
		Source:    source,
		NodeCount: nodes,
		EdgeCount: edges,
		Directed:  directed,
	}
}

// DirectedChanged is raised when the directedness mode is switched
type DirectedChanged struct {
	BaseEvent
	Directed bool `json:"directed"`
}

// NewDirectedChanged creates a DirectedChanged event
func NewDirectedChanged(graphID string, directed bool, timestamp time.Time) DirectedChanged {
	return DirectedChanged{
		BaseEvent: newBase(graphID, TypeDirectedChanged, timestamp),
		Directed:  directed,
	}
}

// HistoryNavigated is raised on undo and redo
type HistoryNavigated struct {
	BaseEvent
	Direction string `json:"direction"`
	Cursor    int    `json:"cursor"`
}

// NewHistoryNavigated creates a HistoryNavigated event
func NewHistoryNavigated(graphID, direction string, cursor int, timestamp time.Time) HistoryNavigated {
	return HistoryNavigated{
		BaseEvent: newBase(graphID, TypeHistoryNavigated, timestamp),
		Direction: direction,
		Cursor:    cursor,
	}
}
