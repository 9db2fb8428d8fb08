package entities

import (
	"encoding/json"

	"grapheditor/domain/core/valueobjects"
	pkgerrors "grapheditor/pkg/errors"
)

// elementData mirrors the canvas element format: structural fields and the
// user attributes live under "data", node coordinates next to it.
type elementData struct {
	ID         string     `json:"id,omitempty"`
	Label      string     `json:"label,omitempty"`
	Source     string     `json:"source,omitempty"`
	Target     string     `json:"target,omitempty"`
	Attributes Attributes `json:"attributes"`
}

type elementJSON struct {
	Data     elementData            `json:"data"`
	Position *valueobjects.Position `json:"position,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (e Element) MarshalJSON() ([]byte, error) {
	out := elementJSON{Data: elementData{Attributes: e.attributes}}
	if out.Data.Attributes == nil {
		out.Data.Attributes = Attributes{}
	}
	if e.IsNode() {
		pos := e.position
		out.Data.ID = e.id
		out.Data.Label = e.label
		out.Position = &pos
	} else {
		out.Data.Source = e.edge.Source
		out.Data.Target = e.edge.Target
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler. Elements with a source or target
// are edges, everything else is a node.
func (e *Element) UnmarshalJSON(data []byte) error {
	var raw elementJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return pkgerrors.NewValidationError("malformed element").WithCause(err)
	}

	var (
		parsed Element
		err    error
	)
	if raw.Data.Source != "" || raw.Data.Target != "" {
		parsed, err = NewEdge(raw.Data.Source, raw.Data.Target, raw.Data.Attributes)
	} else {
		var pos valueobjects.Position
		if raw.Position != nil {
			pos = *raw.Position
		}
		parsed, err = NewNode(raw.Data.ID, raw.Data.Label, pos, raw.Data.Attributes)
	}
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
