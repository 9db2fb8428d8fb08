// Package layout places nodes that arrive without coordinates.
package layout

import (
	"math"

	"grapheditor/domain/core/valueobjects"
)

// DefaultScale is the radius used when none is configured
const DefaultScale = 500.0

// Circular spreads nodes evenly on a circle around the origin. Node order is
// the order of the ids given, so the result is deterministic.
type Circular struct {
	scale float64
}

// NewCircular creates a layout with the given radius
func NewCircular(scale float64) *Circular {
	if scale <= 0 {
		scale = DefaultScale
	}
	return &Circular{scale: scale}
}

// Layout implements ports.LayoutEngine
func (c *Circular) Layout(nodeIDs []string, edges []valueobjects.EdgeKey) map[string]valueobjects.Position {
	positions := make(map[string]valueobjects.Position, len(nodeIDs))
	switch len(nodeIDs) {
	case 0:
		return positions
	case 1:
		positions[nodeIDs[0]] = valueobjects.MustPosition(0, 0)
		return positions
	}

	step := 2 * math.Pi / float64(len(nodeIDs))
	for i, id := range nodeIDs {
		angle := float64(i) * step
		x := round(c.scale * math.Cos(angle))
		y := round(c.scale * math.Sin(angle))
		positions[id] = valueobjects.MustPosition(x, y)
	}
	return positions
}

// round keeps two decimals so exported documents stay readable
func round(v float64) float64 {
	return math.Round(v*100) / 100
}
