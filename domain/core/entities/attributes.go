package entities

import (
	"maps"
	"slices"

	"grapheditor/domain/core/valueobjects"
)

// Attributes is the user-editable property map of a node or edge
type Attributes map[string]valueobjects.AttrValue

// Clone returns an independent copy
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Names returns the attribute names in lexicographic order
func (a Attributes) Names() []string {
	return slices.Sorted(maps.Keys(a))
}

// Has reports whether the attribute exists
func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Equals compares two maps by value
func (a Attributes) Equals(other Attributes) bool {
	return maps.Equal(a, other)
}
