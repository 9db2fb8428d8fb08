package aggregates

import (
	"slices"

	"grapheditor/domain/core/entities"
)

// Snapshot is a point-in-time copy of the element list.
// Elements are immutable values, so copying the slice detaches the snapshot
// from every later mutation of the graph.
type Snapshot struct {
	elements []entities.Element
}

// NewSnapshot captures a copy of the given elements
func NewSnapshot(elements []entities.Element) Snapshot {
	return Snapshot{elements: slices.Clone(elements)}
}

// Elements returns a copy of the captured elements
func (s Snapshot) Elements() []entities.Element {
	return slices.Clone(s.elements)
}

// Len returns the number of captured elements
func (s Snapshot) Len() int {
	return len(s.elements)
}

// Equals compares two snapshots element by element, in order
func (s Snapshot) Equals(other Snapshot) bool {
	return slices.EqualFunc(s.elements, other.elements, func(a, b entities.Element) bool {
		return a.Equals(b)
	})
}
