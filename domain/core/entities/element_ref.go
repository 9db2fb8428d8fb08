package entities

import "fmt"

// ElementRef is the descriptor the canvas reports for a selected or clicked
// element: an id for nodes, a source/target pair for edges.
type ElementRef struct {
	Kind   ElementKind `json:"kind"`
	ID     string      `json:"id,omitempty"`
	Source string      `json:"source,omitempty"`
	Target string      `json:"target,omitempty"`
}

// NodeRef creates a node descriptor
func NodeRef(id string) ElementRef {
	return ElementRef{Kind: KindNode, ID: id}
}

// EdgeRef creates an edge descriptor
func EdgeRef(source, target string) ElementRef {
	return ElementRef{Kind: KindEdge, Source: source, Target: target}
}

// IsNode checks if the descriptor names a node
func (r ElementRef) IsNode() bool {
	return r.Kind == KindNode
}

// Matches reports whether the element is the one this descriptor names
func (r ElementRef) Matches(e Element) bool {
	if r.IsNode() {
		return e.IsNode() && e.ID() == r.ID
	}
	return e.IsEdge() && e.Source() == r.Source && e.Target() == r.Target
}

func (r ElementRef) String() string {
	if r.IsNode() {
		return fmt.Sprintf("node %s", r.ID)
	}
	return fmt.Sprintf("edge %s->%s", r.Source, r.Target)
}
