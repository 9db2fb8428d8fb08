package valueobjects

import "fmt"

// EdgeKey identifies an edge by its endpoints. Edges carry no id of their own.
type EdgeKey struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NewEdgeKey creates an edge key
func NewEdgeKey(source, target string) EdgeKey {
	return EdgeKey{Source: source, Target: target}
}

// Reverse returns the key with source and target swapped
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{Source: k.Target, Target: k.Source}
}

// Matches reports whether other names the same edge under the given directedness
func (k EdgeKey) Matches(other EdgeKey, directed bool) bool {
	if k == other {
		return true
	}
	return !directed && k.Reverse() == other
}

// IsZero checks if the key is unset
func (k EdgeKey) IsZero() bool {
	return k.Source == "" && k.Target == ""
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%s->%s", k.Source, k.Target)
}
