package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grapheditor/application/ports"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/document"
	pkgerrors "grapheditor/pkg/errors"
)

const jsonDocument = `{
  "settings": {"directed": false},
  "nodes": {
    "1": {"label": "a", "position": {"x": 0, "y": 10}, "weight": 3},
    "2": {"label": "b"}
  },
  "edges": [{"nodes": [1, 2], "len": 1}]
}`

const yamlDocument = `
settings:
  directed: true
nodes:
  start: {label: start, position: {x: 1, y: 2}}
  stop: {}
edges:
  - nodes: [start, stop]
    len: 2.5
`

const yamlEnvelope = `
graph_params:
  loader: circle_graph
  loader_params:
    num_nodes: 5
`

func TestCodec_DecodeDocuments(t *testing.T) {
	tests := []struct {
		name     string
		format   ports.Format
		data     string
		nodes    int
		edges    int
		directed bool
	}{
		{"json", ports.FormatJSON, jsonDocument, 2, 1, false},
		{"yaml", ports.FormatYAML, yamlDocument, 2, 1, true},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, params, err := c.Decode(tt.format, []byte(tt.data))
			require.NoError(t, err)
			require.Nil(t, params)
			require.NotNil(t, doc)

			raw, err := doc.ToRaw()
			require.NoError(t, err)
			assert.Len(t, raw.Nodes, tt.nodes)
			assert.Len(t, raw.Edges, tt.edges)
			assert.Equal(t, tt.directed, raw.Directed)
		})
	}
}

func TestCodec_DecodeEnvelope(t *testing.T) {
	doc, params, err := New().Decode(ports.FormatYAML, []byte(yamlEnvelope))
	require.NoError(t, err)
	assert.Nil(t, doc)
	require.NotNil(t, params)
	assert.Equal(t, "circle_graph", params.Loader)
	assert.Equal(t, 5, params.LoaderParams["num_nodes"])
}

func TestCodec_HardcodedEnvelopeRoundTrip(t *testing.T) {
	n1, err := entities.NewNode("1", "a", valueobjects.MustPosition(-5, 20), entities.Attributes{
		"value": valueobjects.MustNumber(100),
	})
	require.NoError(t, err)
	n2, err := entities.NewNode("2", "b", valueobjects.MustPosition(5, 0), nil)
	require.NoError(t, err)
	e, err := entities.NewEdge("1", "2", nil)
	require.NoError(t, err)

	original := document.FromElements([]entities.Element{n1, n2, e}, true)

	c := New()
	for _, format := range []ports.Format{ports.FormatJSON, ports.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := c.Encode(format, original.Wrap())
			require.NoError(t, err)

			doc, params, err := c.Decode(format, data)
			require.NoError(t, err)
			require.Nil(t, params)

			raw, err := doc.ToRaw()
			require.NoError(t, err)
			require.Len(t, raw.Nodes, 2)
			require.Len(t, raw.Edges, 1)
			require.NotNil(t, raw.Nodes[0].Position)
			assert.Equal(t, 0.0, raw.Nodes[0].Position.X())
			assert.Equal(t, 10.0, raw.Nodes[1].Position.X())
			assert.Equal(t, "1", raw.Edges[0].Source)
		})
	}
}

func TestCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format ports.Format
		data   string
	}{
		{"broken json", ports.FormatJSON, `{"nodes": `},
		{"json array", ports.FormatJSON, `[1, 2]`},
		{"broken yaml", ports.FormatYAML, "nodes: [a\n"},
		{"empty yaml", ports.FormatYAML, ""},
		{"envelope without loader", ports.FormatYAML, "graph_params: {loader_params: {}}"},
		{"envelope params not a map", ports.FormatJSON, `{"graph_params": {"loader": "diamond", "loader_params": 3}}`},
		{"unknown format", ports.Format("xml"), "<graph/>"},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := c.Decode(tt.format, []byte(tt.data))
			assert.True(t, pkgerrors.IsValidation(err), "got %v", err)
		})
	}
}
