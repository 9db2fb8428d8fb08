// Package selection turns the canvas selection into store indices and the
// attribute names every selected element shares.
package selection

import (
	"slices"

	"grapheditor/domain/core/entities"
)

// ElementSource is the read side of the graph the tracker needs
type ElementSource interface {
	Len() int
	At(i int) (entities.Element, bool)
}

// Compute builds a selection snapshot from the raw node and edge descriptors
// reported by the canvas. Nil lists count as empty. Indices follow store order,
// not selection order. Descriptors that match nothing are dropped and counted
// in Snapshot.Stale.
func Compute(nodes, edges []entities.ElementRef, graph ElementSource) Snapshot {
	snap := Empty()

	for _, ref := range nodes {
		ref.Kind = entities.KindNode
		if !slices.Contains(snap.Nodes, ref) {
			snap.Nodes = append(snap.Nodes, ref)
		}
	}
	for _, ref := range edges {
		ref.Kind = entities.KindEdge
		if !slices.Contains(snap.Edges, ref) {
			snap.Edges = append(snap.Edges, ref)
		}
	}
	snap.Elements = append(append(snap.Elements, snap.Nodes...), snap.Edges...)

	var common map[string]struct{}
	matched := make(map[entities.ElementRef]bool, len(snap.Elements))

	for i := 0; i < graph.Len(); i++ {
		element, _ := graph.At(i)
		for _, ref := range snap.Elements {
			if !ref.Matches(element) {
				continue
			}
			snap.ElementIndices = append(snap.ElementIndices, i)
			matched[ref] = true
			common = intersect(common, element)
			break
		}
	}

	snap.Stale = len(snap.Elements) - len(matched)
	if snap.Stale > 0 {
		gone := func(ref entities.ElementRef) bool { return !matched[ref] }
		snap.Nodes = slices.DeleteFunc(snap.Nodes, gone)
		snap.Edges = slices.DeleteFunc(snap.Edges, gone)
		snap.Elements = slices.DeleteFunc(snap.Elements, gone)
	}
	for name := range common {
		snap.CommonAttrs = append(snap.CommonAttrs, name)
	}
	slices.Sort(snap.CommonAttrs)
	return snap
}

// intersect narrows the running set to the names present on element.
// A nil set means no element has been seen yet.
func intersect(current map[string]struct{}, element entities.Element) map[string]struct{} {
	if current == nil {
		current = make(map[string]struct{})
		for _, name := range element.AttributeNames() {
			current[name] = struct{}{}
		}
		return current
	}
	for name := range current {
		if !element.HasAttribute(name) {
			delete(current, name)
		}
	}
	return current
}
