package selection

import (
	"slices"

	"grapheditor/domain/core/entities"
)

// Snapshot is the selection state kept per session between canvas events.
// ElementIndices point into the graph the snapshot was computed from and
// must be recomputed after any structural change.
type Snapshot struct {
	CommonAttrs    []string              `json:"common_attrs"`
	Elements       []entities.ElementRef `json:"elements"`
	Edges          []entities.ElementRef `json:"edges"`
	Nodes          []entities.ElementRef `json:"nodes"`
	ElementIndices []int                 `json:"element_indices"`
	// Stale counts descriptors that no longer matched anything in the graph.
	Stale int `json:"stale"`
}

// Empty returns the snapshot of an empty selection
func Empty() Snapshot {
	return Snapshot{
		CommonAttrs:    []string{},
		Elements:       []entities.ElementRef{},
		Edges:          []entities.ElementRef{},
		Nodes:          []entities.ElementRef{},
		ElementIndices: []int{},
	}
}

// IsEmpty reports whether no live element is selected
func (s Snapshot) IsEmpty() bool {
	return len(s.ElementIndices) == 0
}

// SingleNode returns the node descriptor when exactly one node and no edge is selected
func (s Snapshot) SingleNode() (entities.ElementRef, bool) {
	if len(s.Nodes) == 1 && len(s.Edges) == 0 {
		return s.Nodes[0], true
	}
	return entities.ElementRef{}, false
}

// HasCommonAttr checks if name is shared by the whole selection
func (s Snapshot) HasCommonAttr(name string) bool {
	return slices.Contains(s.CommonAttrs, name)
}

// ContainsNode checks if a node id is part of the selection
func (s Snapshot) ContainsNode(id string) bool {
	return slices.Contains(s.Nodes, entities.NodeRef(id))
}

// NodeIDs returns the ids of the selected nodes
func (s Snapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

// WithCommonAttrs returns a copy with a new common attribute list
func (s Snapshot) WithCommonAttrs(attrs []string) Snapshot {
	out := s.Clone()
	out.CommonAttrs = slices.Clone(attrs)
	return out
}

// Clone returns a copy that shares no slices with s
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		CommonAttrs:    cloneOrEmpty(s.CommonAttrs),
		Elements:       cloneOrEmpty(s.Elements),
		Edges:          cloneOrEmpty(s.Edges),
		Nodes:          cloneOrEmpty(s.Nodes),
		ElementIndices: cloneOrEmpty(s.ElementIndices),
		Stale:          s.Stale,
	}
}

func cloneOrEmpty[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}
