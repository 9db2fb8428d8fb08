// Package panel models the attribute editor rows shown for a selection.
// Rows are addressed by a stable key instead of their position.
package panel

import (
	"slices"

	"github.com/google/uuid"

	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/selection"
)

// LabelRowKey addresses the label row of a single selected node
const LabelRowKey = "label"

// Row is one attribute line of the panel
type Row struct {
	Key  string                 `json:"key"`
	Name string                 `json:"name"`
	Kind valueobjects.ValueKind `json:"kind"`
	// Value is set when every selected element holds the same value.
	Value *valueobjects.AttrValue `json:"value,omitempty"`
	// ValueCount is the number of distinct values across the selection.
	ValueCount int  `json:"value_count"`
	Editing    bool `json:"editing"`
}

// ReadOnlyValue reports whether the row shows a value count instead of a value
func (r Row) ReadOnlyValue() bool {
	return r.Value == nil
}

// LabelRow is the label editor of a single selected node
type LabelRow struct {
	NodeID  string `json:"node_id"`
	Label   string `json:"label"`
	Editing bool   `json:"editing"`
}

// Panel is the attribute editor state for one selection
type Panel struct {
	Label *LabelRow `json:"label,omitempty"`
	Rows  []Row     `json:"rows"`
}

// ElementSource is the read side of the graph the panel needs
type ElementSource interface {
	At(i int) (entities.Element, bool)
}

// Build creates the panel for a selection: a label row for a single node and
// one row per common attribute in selection order.
func Build(sel selection.Snapshot, graph ElementSource) Panel {
	p := Panel{Rows: []Row{}}
	if sel.IsEmpty() {
		return p
	}

	selected := make([]entities.Element, 0, len(sel.ElementIndices))
	for _, idx := range sel.ElementIndices {
		if e, ok := graph.At(idx); ok {
			selected = append(selected, e)
		}
	}

	if ref, ok := sel.SingleNode(); ok && len(selected) == 1 {
		p.Label = &LabelRow{NodeID: ref.ID, Label: selected[0].Label()}
	}

	for _, name := range sel.CommonAttrs {
		p.Rows = append(p.Rows, buildRow(name, selected))
	}
	return p
}

func buildRow(name string, selected []entities.Element) Row {
	row := Row{Key: newKey(), Name: name}

	distinct := make(map[string]struct{})
	var first valueobjects.AttrValue
	for _, e := range selected {
		v, ok := e.Attribute(name)
		if !ok {
			continue
		}
		if first.IsZero() {
			first = v
		}
		distinct[v.Key()] = struct{}{}
	}

	row.Kind = first.Kind()
	row.ValueCount = len(distinct)
	if row.ValueCount == 1 {
		row.Value = &first
	}
	return row
}

// CountUniqueValues returns how many distinct values name takes across elements
func CountUniqueValues(elements []entities.Element, name string) int {
	return buildRow(name, elements).ValueCount
}

// Find returns the row with the given key
func (p Panel) Find(key string) (Row, bool) {
	idx := p.index(key)
	if idx < 0 {
		return Row{}, false
	}
	return p.Rows[idx], true
}

// FindByName returns the row showing the given attribute
func (p Panel) FindByName(name string) (Row, bool) {
	idx := slices.IndexFunc(p.Rows, func(r Row) bool { return r.Name == name })
	if idx < 0 {
		return Row{}, false
	}
	return p.Rows[idx], true
}

// HasKey reports whether the key addresses a row or the label row
func (p Panel) HasKey(key string) bool {
	if key == LabelRowKey {
		return p.Label != nil
	}
	return p.index(key) >= 0
}

// OpenEdit switches a row into edit mode
func (p Panel) OpenEdit(key string) (Panel, bool) {
	return p.setEditing(key, true)
}

// CancelEdit leaves edit mode without touching the graph
func (p Panel) CancelEdit(key string) (Panel, bool) {
	return p.setEditing(key, false)
}

// Renamed closes the edit of a row after a confirmed change. A nil value keeps
// the row's current value or value count.
func (p Panel) Renamed(key, newName string, value *valueobjects.AttrValue) Panel {
	out := p.Clone()
	idx := out.index(key)
	if idx < 0 {
		return out
	}
	row := &out.Rows[idx]
	row.Name = newName
	row.Editing = false
	if value != nil {
		v := *value
		row.Value = &v
		row.Kind = v.Kind()
		row.ValueCount = 1
	}
	return out
}

// Added appends a row for a new attribute, or refreshes the row already showing it
func (p Panel) Added(name string, value valueobjects.AttrValue) Panel {
	out := p.Clone()
	v := value
	if idx := slices.IndexFunc(out.Rows, func(r Row) bool { return r.Name == name }); idx >= 0 {
		out.Rows[idx].Value = &v
		out.Rows[idx].Kind = v.Kind()
		out.Rows[idx].ValueCount = 1
		return out
	}
	out.Rows = append(out.Rows, Row{Key: newKey(), Name: name, Kind: v.Kind(), Value: &v, ValueCount: 1})
	return out
}

// Removed drops a row
func (p Panel) Removed(key string) Panel {
	out := p.Clone()
	out.Rows = slices.DeleteFunc(out.Rows, func(r Row) bool { return r.Key == key })
	return out
}

// Relabeled updates the label row after a confirmed label change
func (p Panel) Relabeled(label string) Panel {
	out := p.Clone()
	if out.Label != nil {
		out.Label.Label = label
		out.Label.Editing = false
	}
	return out
}

// Clone returns a deep copy
func (p Panel) Clone() Panel {
	out := Panel{Rows: make([]Row, len(p.Rows))}
	for i, r := range p.Rows {
		if r.Value != nil {
			v := *r.Value
			r.Value = &v
		}
		out.Rows[i] = r
	}
	if p.Label != nil {
		l := *p.Label
		out.Label = &l
	}
	return out
}

func (p Panel) setEditing(key string, editing bool) (Panel, bool) {
	out := p.Clone()
	if key == LabelRowKey {
		if out.Label == nil {
			return p, false
		}
		out.Label.Editing = editing
		return out, true
	}
	idx := out.index(key)
	if idx < 0 {
		return p, false
	}
	out.Rows[idx].Editing = editing
	return out, true
}

func (p Panel) index(key string) int {
	return slices.IndexFunc(p.Rows, func(r Row) bool { return r.Key == key })
}

func newKey() string {
	return uuid.New().String()
}
