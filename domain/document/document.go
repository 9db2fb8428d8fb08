// Package document defines the exchange format of a graph and converts it
// to and from the element list.
//
// Nodes are keyed by id and carry their attributes flattened next to the
// reserved "position" and "label" keys. Edges list their endpoints under the
// reserved "nodes" key.
package document

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
	pkgerrors "grapheditor/pkg/errors"
)

const (
	keyPosition = "position"
	keyLabel    = "label"
	keyNodes    = "nodes"
)

// HardcodedLoader is the loader name used when a document is wrapped for export
const HardcodedLoader = "hardcoded"

// Document is the persisted form of a graph
type Document struct {
	Settings Settings                          `json:"settings" yaml:"settings"`
	Targets  map[string]map[string]interface{} `json:"targets,omitempty" yaml:"targets,omitempty"`
	Nodes    map[string]map[string]interface{} `json:"nodes" yaml:"nodes"`
	Edges    []map[string]interface{}          `json:"edges" yaml:"edges"`
}

// Settings carries graph-wide options and default attributes
type Settings struct {
	Directed  *bool                  `json:"directed,omitempty" yaml:"directed,omitempty"`
	NodeAtt   map[string]interface{} `json:"node_att,omitempty" yaml:"node_att,omitempty"`
	TargetAtt map[string]interface{} `json:"target_att,omitempty" yaml:"target_att,omitempty"`
	EdgeAtt   map[string]interface{} `json:"edge_att,omitempty" yaml:"edge_att,omitempty"`
}

// Envelope names the generator that produces a graph together with its parameters
type Envelope struct {
	GraphParams *GraphParams `json:"graph_params" yaml:"graph_params"`
}

// GraphParams selects a loader and its parameters
type GraphParams struct {
	Loader       string                 `json:"loader" yaml:"loader"`
	LoaderParams map[string]interface{} `json:"loader_params" yaml:"loader_params"`
}

// NodeSpec is a node before layout
type NodeSpec struct {
	ID         string
	Label      string
	Position   *valueobjects.Position
	Attributes entities.Attributes
}

// EdgeSpec is an edge between two node ids
type EdgeSpec struct {
	Source     string
	Target     string
	Attributes entities.Attributes
}

// RawGraph is a graph whose nodes may still lack positions
type RawGraph struct {
	Name     string
	Directed bool
	Nodes    []NodeSpec
	Edges    []EdgeSpec
}

// NeedsLayout reports whether any node lacks a position
func (g RawGraph) NeedsLayout() bool {
	for _, n := range g.Nodes {
		if n.Position == nil {
			return true
		}
	}
	return false
}

// ToRaw converts a document into a raw graph. Nodes listed under targets get
// target defaults; every other node gets node defaults. A document without
// settings.directed is directed.
func (d Document) ToRaw() (RawGraph, error) {
	raw := RawGraph{Name: HardcodedLoader, Directed: true}
	if d.Settings.Directed != nil {
		raw.Directed = *d.Settings.Directed
	}

	seen := make(map[string]bool)
	add := func(specs map[string]map[string]interface{}, defaults map[string]interface{}, target *bool) error {
		for _, id := range SortedIDs(specs) {
			if seen[id] {
				return pkgerrors.NewValidationErrorf("node %q listed twice", id)
			}
			seen[id] = true
			spec, err := nodeSpec(id, specs[id], defaults, target)
			if err != nil {
				return err
			}
			raw.Nodes = append(raw.Nodes, spec)
		}
		return nil
	}
	// the target flag is only forced when the document splits targets from nodes
	var isTarget, isNode *bool
	if len(d.Targets) > 0 {
		yes, no := true, false
		isTarget, isNode = &yes, &no
	}
	if err := add(d.Targets, d.Settings.TargetAtt, isTarget); err != nil {
		return RawGraph{}, err
	}
	if err := add(d.Nodes, d.Settings.NodeAtt, isNode); err != nil {
		return RawGraph{}, err
	}

	for i, e := range d.Edges {
		spec, err := edgeSpec(e, d.Settings.EdgeAtt)
		if err != nil {
			return RawGraph{}, pkgerrors.Wrapf(err, "edge #%d", i)
		}
		raw.Edges = append(raw.Edges, spec)
	}
	return raw, nil
}

func nodeSpec(id string, fields, defaults map[string]interface{}, target *bool) (NodeSpec, error) {
	spec := NodeSpec{ID: id, Label: id, Attributes: entities.Attributes{}}

	merged := make(map[string]interface{}, len(defaults)+len(fields)+1)
	for k, v := range defaults {
		merged[k] = v
	}
	if target != nil {
		merged["target"] = *target
	}
	for k, v := range fields {
		merged[k] = v
	}

	for k, v := range merged {
		switch k {
		case keyPosition:
			pos, err := parsePosition(v)
			if err != nil {
				return NodeSpec{}, pkgerrors.Wrapf(err, "node %q", id)
			}
			spec.Position = &pos
		case keyLabel:
			spec.Label = fmt.Sprint(v)
		default:
			value, err := valueobjects.FromInterface(v)
			if err != nil {
				return NodeSpec{}, pkgerrors.Wrapf(err, "node %q attribute %q", id, k)
			}
			spec.Attributes[k] = value
		}
	}
	return spec, nil
}

func edgeSpec(fields, defaults map[string]interface{}) (EdgeSpec, error) {
	endpoints, ok := fields[keyNodes].([]interface{})
	if !ok || len(endpoints) != 2 {
		return EdgeSpec{}, pkgerrors.NewValidationError(`edge needs "nodes": [source, target]`)
	}
	spec := EdgeSpec{
		Source:     fmt.Sprint(endpoints[0]),
		Target:     fmt.Sprint(endpoints[1]),
		Attributes: entities.Attributes{},
	}
	for _, src := range []map[string]interface{}{defaults, fields} {
		for k, v := range src {
			if k == keyNodes {
				continue
			}
			value, err := valueobjects.FromInterface(v)
			if err != nil {
				return EdgeSpec{}, pkgerrors.Wrapf(err, "attribute %q", k)
			}
			spec.Attributes[k] = value
		}
	}
	return spec, nil
}

func parsePosition(v interface{}) (valueobjects.Position, error) {
	var x, y interface{}
	switch m := v.(type) {
	case map[string]interface{}:
		x, y = m["x"], m["y"]
	case map[interface{}]interface{}:
		x, y = m["x"], m["y"]
	default:
		return valueobjects.Position{}, pkgerrors.NewValidationError("position must be an object with x and y")
	}
	fx, err := toFloat(x)
	if err != nil {
		return valueobjects.Position{}, err
	}
	fy, err := toFloat(y)
	if err != nil {
		return valueobjects.Position{}, err
	}
	return valueobjects.NewPosition(fx, fy)
}

func toFloat(v interface{}) (float64, error) {
	value, err := valueobjects.FromInterface(v)
	if err != nil || value.Kind() != valueobjects.KindNumber {
		return 0, pkgerrors.NewValidationErrorf("coordinate %v is not a number", v)
	}
	return value.Number(), nil
}

// FromElements builds a document from the element list. Positions are shifted
// so that no coordinate is negative.
func FromElements(elements []entities.Element, directed bool) Document {
	doc := Document{
		Settings: Settings{Directed: &directed},
		Nodes:    make(map[string]map[string]interface{}),
		Edges:    []map[string]interface{}{},
	}

	var xOffset, yOffset float64
	for _, e := range elements {
		if e.IsNode() {
			xOffset = min(xOffset, e.Position().X())
			yOffset = min(yOffset, e.Position().Y())
		}
	}

	for _, e := range elements {
		fields := make(map[string]interface{})
		for name, value := range e.Attributes() {
			fields[name] = value.Interface()
		}
		if e.IsNode() {
			fields[keyPosition] = map[string]interface{}{
				"x": e.Position().X() - xOffset,
				"y": e.Position().Y() - yOffset,
			}
			fields[keyLabel] = e.Label()
			doc.Nodes[e.ID()] = fields
			continue
		}
		fields[keyNodes] = []interface{}{e.Source(), e.Target()}
		doc.Edges = append(doc.Edges, fields)
	}
	return doc
}

// Wrap puts the document into a hardcoded-loader envelope
func (d Document) Wrap() map[string]interface{} {
	params := map[string]interface{}{
		"settings": d.Settings,
		"targets":  map[string]interface{}{},
		"nodes":    d.Nodes,
		"edges":    d.Edges,
	}
	return map[string]interface{}{
		"graph_params": map[string]interface{}{
			"loader":        HardcodedLoader,
			"loader_params": params,
		},
	}
}

// FromLoaderParams reads the parameters of a hardcoded-loader envelope, which
// carry a whole document, from their decoded JSON or YAML form.
func FromLoaderParams(params map[string]interface{}) (Document, error) {
	data, err := json.Marshal(normalize(params))
	if err != nil {
		return Document{}, pkgerrors.NewValidationError("hardcoded graph parameters cannot be encoded").WithCause(err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, pkgerrors.NewValidationError("hardcoded graph parameters are not a document").WithCause(err)
	}
	return doc, nil
}

// normalize turns the map[interface{}]interface{} values some YAML decoders
// produce into JSON-encodable maps.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

// ToElements converts a raw graph into elements. positions supplies
// coordinates for nodes that have none; missing entries fall back to the origin.
func ToElements(raw RawGraph, positions map[string]valueobjects.Position) ([]entities.Element, error) {
	elements := make([]entities.Element, 0, len(raw.Nodes)+len(raw.Edges))
	for _, n := range raw.Nodes {
		pos := positions[n.ID]
		if n.Position != nil {
			pos = *n.Position
		}
		node, err := entities.NewNode(n.ID, n.Label, pos, n.Attributes)
		if err != nil {
			return nil, err
		}
		elements = append(elements, node)
	}
	for _, e := range raw.Edges {
		edge, err := entities.NewEdge(e.Source, e.Target, e.Attributes)
		if err != nil {
			return nil, err
		}
		elements = append(elements, edge)
	}
	return elements, nil
}

// SortedIDs returns map keys with numeric ids first in numeric order, then
// the rest lexicographically.
func SortedIDs[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aErr := strconv.Atoi(ids[i])
		b, bErr := strconv.Atoi(ids[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}
