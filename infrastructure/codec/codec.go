// Package codec reads and writes graph documents as JSON or YAML.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"grapheditor/application/ports"
	"grapheditor/domain/document"
	pkgerrors "grapheditor/pkg/errors"
)

const envelopeKey = "graph_params"

// Codec implements ports.DocumentCodec
type Codec struct{}

// New creates a codec
func New() *Codec {
	return &Codec{}
}

// Encode serializes a document or an envelope
func (c *Codec) Encode(format ports.Format, v interface{}) ([]byte, error) {
	switch format {
	case ports.FormatJSON:
		return json.MarshalIndent(v, "", "  ")
	case ports.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, unsupported(format)
}

// Decode parses a document, or the generator parameters when the data is a
// graph_params envelope. A hardcoded-loader envelope carries its document
// inline and is unwrapped.
func (c *Codec) Decode(format ports.Format, data []byte) (*document.Document, *document.GraphParams, error) {
	top, err := decodeMap(format, data)
	if err != nil {
		return nil, nil, err
	}

	if raw, ok := top[envelopeKey]; ok {
		params, err := envelopeParams(raw)
		if err != nil {
			return nil, nil, err
		}
		if params.Loader != document.HardcodedLoader {
			return nil, params, nil
		}
		doc, err := document.FromLoaderParams(params.LoaderParams)
		if err != nil {
			return nil, nil, err
		}
		return &doc, nil, nil
	}

	doc, err := document.FromLoaderParams(top)
	if err != nil {
		return nil, nil, err
	}
	return &doc, nil, nil
}

func decodeMap(format ports.Format, data []byte) (map[string]interface{}, error) {
	var top map[string]interface{}
	switch format {
	case ports.FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&top); err != nil {
			return nil, pkgerrors.NewValidationError("document is not a valid JSON object").WithCause(err)
		}
	case ports.FormatYAML:
		if err := yaml.Unmarshal(data, &top); err != nil {
			return nil, pkgerrors.NewValidationError("document is not a valid YAML mapping").WithCause(err)
		}
	default:
		return nil, unsupported(format)
	}
	if top == nil {
		return nil, pkgerrors.NewValidationError("document is empty")
	}
	return top, nil
}

func envelopeParams(raw interface{}) (*document.GraphParams, error) {
	fields, ok := raw.(map[string]interface{})
	if !ok {
		return nil, pkgerrors.NewValidationError("graph_params must be a mapping")
	}

	loader, _ := fields["loader"].(string)
	if loader == "" {
		return nil, pkgerrors.NewValidationError("graph_params.loader is required")
	}

	params := &document.GraphParams{Loader: loader, LoaderParams: map[string]interface{}{}}
	switch lp := fields["loader_params"].(type) {
	case nil:
	case map[string]interface{}:
		params.LoaderParams = lp
	default:
		return nil, pkgerrors.NewValidationError("graph_params.loader_params must be a mapping")
	}
	return params, nil
}

func unsupported(format ports.Format) error {
	return pkgerrors.NewValidationError(fmt.Sprintf("unsupported document format %q", format)).
		WithCode("UNSUPPORTED_FORMAT")
}
