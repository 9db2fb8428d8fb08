package entities

import (
	"fmt"

	"grapheditor/domain/core/valueobjects"
	pkgerrors "grapheditor/pkg/errors"
)

// ElementKind discriminates nodes from edges
type ElementKind string

const (
	KindNode ElementKind = "node"
	KindEdge ElementKind = "edge"
)

// Element is a node or an edge of the graph.
// Elements are values: every mutator returns a modified copy and never touches
// the attribute map of the receiver, so copying a slice of elements is enough
// to snapshot a graph.
type Element struct {
	kind       ElementKind
	id         string
	label      string
	position   valueobjects.Position
	edge       valueobjects.EdgeKey
	attributes Attributes
}

// NewNode creates a node element
func NewNode(id, label string, position valueobjects.Position, attrs Attributes) (Element, error) {
	if id == "" {
		return Element{}, pkgerrors.NewValidationError("node id cannot be empty")
	}
	return Element{
		kind:       KindNode,
		id:         id,
		label:      label,
		position:   position,
		attributes: attrs.Clone(),
	}, nil
}

// NewEdge creates an edge element between two node ids
func NewEdge(source, target string, attrs Attributes) (Element, error) {
	if source == "" || target == "" {
		return Element{}, pkgerrors.NewValidationError("edge source and target cannot be empty")
	}
	return Element{
		kind:       KindEdge,
		edge:       valueobjects.NewEdgeKey(source, target),
		attributes: attrs.Clone(),
	}, nil
}

// Kind returns the element kind
func (e Element) Kind() ElementKind {
	return e.kind
}

// IsNode checks if the element is a node
func (e Element) IsNode() bool {
	return e.kind == KindNode
}

// IsEdge checks if the element is an edge
func (e Element) IsEdge() bool {
	return e.kind == KindEdge
}

// ID returns the node id; empty for edges
func (e Element) ID() string {
	return e.id
}

// Label returns the node label
func (e Element) Label() string {
	return e.label
}

// Position returns the node position
func (e Element) Position() valueobjects.Position {
	return e.position
}

// Key returns the edge endpoints
func (e Element) Key() valueobjects.EdgeKey {
	return e.edge
}

// Source returns the edge source node id
func (e Element) Source() string {
	return e.edge.Source
}

// Target returns the edge target node id
func (e Element) Target() string {
	return e.edge.Target
}

// Ref returns the descriptor the canvas uses for this element
func (e Element) Ref() ElementRef {
	if e.IsNode() {
		return NodeRef(e.id)
	}
	return EdgeRef(e.edge.Source, e.edge.Target)
}

// Attributes returns a copy of the attribute map
func (e Element) Attributes() Attributes {
	return e.attributes.Clone()
}

// Attribute returns a single attribute value
func (e Element) Attribute(name string) (valueobjects.AttrValue, bool) {
	v, ok := e.attributes[name]
	return v, ok
}

// HasAttribute checks if the attribute exists
func (e Element) HasAttribute(name string) bool {
	return e.attributes.Has(name)
}

// AttributeNames returns the sorted attribute names
func (e Element) AttributeNames() []string {
	return e.attributes.Names()
}

// WithLabel returns a copy of the node with a new label
func (e Element) WithLabel(label string) (Element, error) {
	if !e.IsNode() {
		return e, pkgerrors.NewValidationError("only nodes carry a label")
	}
	e.label = label
	return e, nil
}

// MovedTo returns a copy of the node at a new position
func (e Element) MovedTo(position valueobjects.Position) (Element, error) {
	if !e.IsNode() {
		return e, pkgerrors.NewValidationError("only nodes have a position")
	}
	e.position = position
	return e, nil
}

// WithAttribute returns a copy with the attribute set, overwriting any previous value
func (e Element) WithAttribute(name string, value valueobjects.AttrValue) (Element, error) {
	if name == "" {
		return e, pkgerrors.NewValidationError("attribute name cannot be empty")
	}
	if value.IsZero() {
		return e, pkgerrors.NewValidationErrorf("attribute %q has no value", name)
	}
	attrs := e.attributes.Clone()
	attrs[name] = value
	e.attributes = attrs
	return e, nil
}

// WithoutAttribute returns a copy with the attribute removed.
// Removing an attribute the element does not have is a stale reference.
func (e Element) WithoutAttribute(name string) (Element, error) {
	if !e.attributes.Has(name) {
		return e, pkgerrors.NewStaleReferenceError(fmt.Sprintf("attribute %q of %s", name, e.Ref()))
	}
	attrs := e.attributes.Clone()
	delete(attrs, name)
	e.attributes = attrs
	return e, nil
}

// WithRenamedAttribute returns a copy where oldName is stored under newName,
// keeping its value.
func (e Element) WithRenamedAttribute(oldName, newName string) (Element, error) {
	if newName == "" {
		return e, pkgerrors.NewValidationError("attribute name cannot be empty")
	}
	value, ok := e.attributes[oldName]
	if !ok {
		return e, pkgerrors.NewStaleReferenceError(fmt.Sprintf("attribute %q of %s", oldName, e.Ref()))
	}
	if oldName == newName {
		return e, nil
	}
	if e.attributes.Has(newName) {
		return e, pkgerrors.NewValidationErrorf("attribute %q already exists on %s", newName, e.Ref())
	}
	attrs := e.attributes.Clone()
	delete(attrs, oldName)
	attrs[newName] = value
	e.attributes = attrs
	return e, nil
}

// Equals compares two elements structurally, attributes included
func (e Element) Equals(other Element) bool {
	return e.kind == other.kind &&
		e.id == other.id &&
		e.label == other.label &&
		e.position.Equals(other.position) &&
		e.edge == other.edge &&
		e.attributes.Equals(other.attributes)
}

func (e Element) String() string {
	return e.Ref().String()
}
