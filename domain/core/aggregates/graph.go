package aggregates

import (
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/events"
	pkgerrors "grapheditor/pkg/errors"
)

// GraphID represents a unique graph identifier
type GraphID string

// NewGraphID creates a new random GraphID
func NewGraphID() GraphID {
	return GraphID(uuid.New().String())
}

// String returns the string representation
func (id GraphID) String() string {
	return string(id)
}

// Graph is the aggregate root holding the ordered element list.
// Element order is insertion order. Indices are only meaningful until the
// next structural change.
type Graph struct {
	id       GraphID
	elements []entities.Element
	directed bool
	// nextID is the next node id to hand out. It only moves forward, except
	// on Reset.
	nextID int
	events []events.DomainEvent
}

// NewGraph creates an empty graph
func NewGraph(directed bool) *Graph {
	return &Graph{
		id:       NewGraphID(),
		directed: directed,
		nextID:   1,
		events:   []events.DomainEvent{},
	}
}

// ID returns the graph's unique identifier
func (g *Graph) ID() GraphID {
	return g.id
}

// Directed reports the directedness mode used by CanAddEdge
func (g *Graph) Directed() bool {
	return g.directed
}

// NextID returns the id the next AddNode will use
func (g *Graph) NextID() string {
	return strconv.Itoa(g.nextID)
}

// SetDirected switches the directedness mode. Existing edges are kept as they are.
func (g *Graph) SetDirected(directed bool) {
	if g.directed == directed {
		return
	}
	g.directed = directed
	g.addEvent(events.NewDirectedChanged(g.id.String(), directed, time.Now()))
}

// Len returns the number of elements
func (g *Graph) Len() int {
	return len(g.elements)
}

// At returns the element at index i
func (g *Graph) At(i int) (entities.Element, bool) {
	if i < 0 || i >= len(g.elements) {
		return entities.Element{}, false
	}
	return g.elements[i], true
}

// Elements returns a copy of the element list in store order
func (g *Graph) Elements() []entities.Element {
	return slices.Clone(g.elements)
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	count := 0
	for _, e := range g.elements {
		if e.IsNode() {
			count++
		}
	}
	return count
}

// EdgeCount returns the number of edges
func (g *Graph) EdgeCount() int {
	return len(g.elements) - g.NodeCount()
}

// IndexOf returns the store index of the element a descriptor names, or -1
func (g *Graph) IndexOf(ref entities.ElementRef) int {
	return slices.IndexFunc(g.elements, ref.Matches)
}

// HasNode checks if a node id exists
func (g *Graph) HasNode(id string) bool {
	return g.IndexOf(entities.NodeRef(id)) >= 0
}

// GetNode returns a node by id
func (g *Graph) GetNode(id string) (entities.Element, error) {
	idx := g.IndexOf(entities.NodeRef(id))
	if idx < 0 {
		return entities.Element{}, pkgerrors.NewStaleReferenceError(entities.NodeRef(id).String())
	}
	return g.elements[idx], nil
}

// AddNode places a new node and returns its generated id. The label starts as the id.
func (g *Graph) AddNode(position valueobjects.Position) (string, error) {
	id := strconv.Itoa(g.nextID)
	node, err := entities.NewNode(id, id, position, nil)
	if err != nil {
		return "", err
	}
	g.nextID++
	g.elements = append(g.elements, node)
	g.addEvent(events.NewNodeAdded(g.id.String(), id, position, time.Now()))
	return id, nil
}

// CanAddEdge reports whether an edge source->target may be created under the
// current directedness mode. Undirected graphs also reject the reverse pair.
func (g *Graph) CanAddEdge(source, target string) bool {
	key := valueobjects.NewEdgeKey(source, target)
	for _, e := range g.elements {
		if e.IsEdge() && e.Key().Matches(key, g.directed) {
			return false
		}
	}
	return true
}

// AddEdge connects two existing nodes
func (g *Graph) AddEdge(source, target string, attrs entities.Attributes) error {
	for _, id := range []string{source, target} {
		if !g.HasNode(id) {
			return pkgerrors.NewStaleReferenceError(entities.NodeRef(id).String())
		}
	}
	if !g.CanAddEdge(source, target) {
		return pkgerrors.NewValidationErrorf("edge %s->%s already exists", source, target).
			WithCode("DUPLICATE_EDGE")
	}
	edge, err := entities.NewEdge(source, target, attrs)
	if err != nil {
		return err
	}
	g.elements = append(g.elements, edge)
	g.addEvent(events.NewEdgeAdded(g.id.String(), edge.Key(), time.Now()))
	return nil
}

// DeleteEdge removes the edge with exactly this source and target
func (g *Graph) DeleteEdge(source, target string) error {
	ref := entities.EdgeRef(source, target)
	before := len(g.elements)
	g.elements = slices.DeleteFunc(g.elements, ref.Matches)
	if len(g.elements) == before {
		return pkgerrors.NewStaleReferenceError(ref.String())
	}
	g.addEvent(events.NewEdgeDeleted(g.id.String(), valueobjects.NewEdgeKey(source, target), time.Now()))
	return nil
}

// DeleteNode removes a node together with every edge touching it
func (g *Graph) DeleteNode(id string) ([]valueobjects.EdgeKey, error) {
	var incident []entities.Element
	for _, e := range g.elements {
		if e.IsEdge() && (e.Source() == id || e.Target() == id) {
			incident = append(incident, e)
		}
	}
	return g.DeleteNodeWithIncident(id, incident)
}

// DeleteNodeWithIncident removes a node and exactly those edges that are
// structurally equal to one of the reported incident edges. Edges touching the
// node that were not reported stay in place.
func (g *Graph) DeleteNodeWithIncident(id string, reported []entities.Element) ([]valueobjects.EdgeKey, error) {
	if !g.HasNode(id) {
		return nil, pkgerrors.NewStaleReferenceError(entities.NodeRef(id).String())
	}

	var removed []valueobjects.EdgeKey
	g.elements = slices.DeleteFunc(g.elements, func(e entities.Element) bool {
		if e.IsNode() {
			return e.ID() == id
		}
		for _, r := range reported {
			if r.Equals(e) {
				removed = append(removed, e.Key())
				return true
			}
		}
		return false
	})

	g.addEvent(events.NewNodeDeleted(g.id.String(), id, removed, time.Now()))
	return removed, nil
}

// MoveNode places a node at a new position and returns the applied offset
func (g *Graph) MoveNode(id string, position valueobjects.Position) (float64, float64, error) {
	idx := g.IndexOf(entities.NodeRef(id))
	if idx < 0 {
		return 0, 0, pkgerrors.NewStaleReferenceError(entities.NodeRef(id).String())
	}
	dx, dy := g.elements[idx].Position().Delta(position)
	moved, err := g.elements[idx].MovedTo(position)
	if err != nil {
		return 0, 0, err
	}
	g.elements[idx] = moved
	return dx, dy, nil
}

// TranslateNodes shifts the given nodes by the same offset. Unknown ids are skipped.
func (g *Graph) TranslateNodes(ids []string, dx, dy float64) error {
	for _, id := range ids {
		idx := g.IndexOf(entities.NodeRef(id))
		if idx < 0 {
			continue
		}
		pos, err := g.elements[idx].Position().Translate(dx, dy)
		if err != nil {
			return err
		}
		moved, err := g.elements[idx].MovedTo(pos)
		if err != nil {
			return err
		}
		g.elements[idx] = moved
	}
	return nil
}

// RecordMove emits the event for a finished drag
func (g *Graph) RecordMove(ids []string, dx, dy float64) {
	g.addEvent(events.NewNodesMoved(g.id.String(), ids, dx, dy, time.Now()))
}

// SetLabel changes a node label and returns the previous one
func (g *Graph) SetLabel(id, label string) (string, error) {
	idx := g.IndexOf(entities.NodeRef(id))
	if idx < 0 {
		return "", pkgerrors.NewStaleReferenceError(entities.NodeRef(id).String())
	}
	old := g.elements[idx].Label()
	relabeled, err := g.elements[idx].WithLabel(label)
	if err != nil {
		return "", err
	}
	g.elements[idx] = relabeled
	if old != label {
		g.addEvent(events.NewNodeRelabeled(g.id.String(), id, old, label, time.Now()))
	}
	return old, nil
}

// GetAttributes returns a copy of an element's attribute map
func (g *Graph) GetAttributes(ref entities.ElementRef) (entities.Attributes, error) {
	idx := g.IndexOf(ref)
	if idx < 0 {
		return nil, pkgerrors.NewStaleReferenceError(ref.String())
	}
	return g.elements[idx].Attributes(), nil
}

// SetAttribute sets one attribute on an element
func (g *Graph) SetAttribute(ref entities.ElementRef, name string, value valueobjects.AttrValue) error {
	return g.updateRef(ref, func(e entities.Element) (entities.Element, error) {
		return e.WithAttribute(name, value)
	})
}

// RenameAttribute renames one attribute on an element, keeping its value
func (g *Graph) RenameAttribute(ref entities.ElementRef, oldName, newName string) error {
	return g.updateRef(ref, func(e entities.Element) (entities.Element, error) {
		return e.WithRenamedAttribute(oldName, newName)
	})
}

// RemoveAttribute removes one attribute from an element
func (g *Graph) RemoveAttribute(ref entities.ElementRef, name string) error {
	return g.updateRef(ref, func(e entities.Element) (entities.Element, error) {
		return e.WithoutAttribute(name)
	})
}

// UpdateAt replaces the element at index i with the result of fn
func (g *Graph) UpdateAt(i int, fn func(entities.Element) (entities.Element, error)) error {
	if i < 0 || i >= len(g.elements) {
		return pkgerrors.NewStaleReferenceError(fmt.Sprintf("element #%d", i))
	}
	updated, err := fn(g.elements[i])
	if err != nil {
		return err
	}
	if updated.Kind() != g.elements[i].Kind() || updated.Ref() != g.elements[i].Ref() {
		return pkgerrors.NewValidationError("element identity cannot change")
	}
	g.elements[i] = updated
	return nil
}

// RecordAttributeChange emits the event for a batched attribute edit
func (g *Graph) RecordAttributeChange(change events.AttributeChange, name, newName string, count int) {
	g.addEvent(events.NewAttributesChanged(g.id.String(), change, name, newName, count, time.Now()))
}

func (g *Graph) updateRef(ref entities.ElementRef, fn func(entities.Element) (entities.Element, error)) error {
	idx := g.IndexOf(ref)
	if idx < 0 {
		return pkgerrors.NewStaleReferenceError(ref.String())
	}
	return g.UpdateAt(idx, fn)
}

// Snapshot captures the current element list
func (g *Graph) Snapshot() Snapshot {
	return NewSnapshot(g.elements)
}

// Restore replaces the element list with a snapshot. The id counter never
// moves backwards, so ids handed out after the snapshot stay unique.
func (g *Graph) Restore(s Snapshot) {
	g.elements = s.Elements()
	g.bumpNextID()
}

// Reset clears the graph and restarts id generation
func (g *Graph) Reset() {
	g.elements = nil
	g.nextID = 1
	g.addEvent(events.NewGraphReset(g.id.String(), time.Now()))
}

// Load replaces the graph contents with externally produced elements.
// Node ids must be unique and edges must reference loaded nodes.
func (g *Graph) Load(elements []entities.Element, directed bool, source string) error {
	seen := make(map[string]bool)
	for _, e := range elements {
		if !e.IsNode() {
			continue
		}
		if seen[e.ID()] {
			return pkgerrors.NewValidationErrorf("duplicate node id %q", e.ID())
		}
		seen[e.ID()] = true
	}
	for _, e := range elements {
		if e.IsEdge() && (!seen[e.Source()] || !seen[e.Target()]) {
			return pkgerrors.NewValidationErrorf("edge %s references an unknown node", e.Key())
		}
	}

	g.elements = slices.Clone(elements)
	g.directed = directed
	g.bumpNextID()
	g.addEvent(events.NewGraphLoaded(g.id.String(), source, g.NodeCount(), g.EdgeCount(), directed, time.Now()))
	return nil
}

// Clone returns an independent copy of the graph without pending events
func (g *Graph) Clone() *Graph {
	return &Graph{
		id:       g.id,
		elements: slices.Clone(g.elements),
		directed: g.directed,
		nextID:   g.nextID,
		events:   []events.DomainEvent{},
	}
}

// GetUncommittedEvents returns events that haven't been persisted
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	return slices.Clone(g.events)
}

// MarkEventsAsCommitted clears the uncommitted events
func (g *Graph) MarkEventsAsCommitted() {
	g.events = []events.DomainEvent{}
}

// bumpNextID moves the counter past every numeric node id in the graph
func (g *Graph) bumpNextID() {
	for _, e := range g.elements {
		if !e.IsNode() {
			continue
		}
		if n, err := strconv.Atoi(e.ID()); err == nil && n >= g.nextID {
			g.nextID = n + 1
		}
	}
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}
