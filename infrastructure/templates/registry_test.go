package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grapheditor/domain/core/valueobjects"
	pkgerrors "grapheditor/pkg/errors"
)

func TestRegistry_List(t *testing.T) {
	names := []string{}
	for _, info := range NewRegistry().List() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"circle_graph", "complete_graph", "diamond", "hardcoded"}, names)
}

func TestRegistry_Generate(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		params    map[string]interface{}
		graphName string
		nodes     int
		edges     int
		directed  bool
	}{
		{"circle", "circle_graph", map[string]interface{}{"num_nodes": 5}, "5_circle", 5, 5, false},
		{"circle of two", "circle_graph", map[string]interface{}{"num_nodes": 2}, "2_circle", 2, 1, false},
		{"clique", "complete_graph", map[string]interface{}{"num_nodes": 4}, "4_clique", 4, 6, false},
		{"diamond", "diamond", map[string]interface{}{"values": []interface{}{1, 2.5, 3}}, "diamond", 5, 7, true},
		{"hardcoded defaults", "hardcoded", nil, "hardcoded", 0, 0, true},
		{"hardcoded", "hardcoded", map[string]interface{}{
			"nodes":    map[string]interface{}{"a": map[string]interface{}{"w": 1}, "b": nil},
			"edges":    []interface{}{map[string]interface{}{"nodes": []interface{}{"a", "b"}}},
			"settings": map[string]interface{}{"directed": false},
		}, "hardcoded", 2, 1, false},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := r.Generate(tt.template, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.graphName, raw.Name)
			assert.Len(t, raw.Nodes, tt.nodes)
			assert.Len(t, raw.Edges, tt.edges)
			assert.Equal(t, tt.directed, raw.Directed)
			assert.Equal(t, tt.nodes > 0, raw.NeedsLayout())
		})
	}
}

func TestRegistry_NodeAttributes(t *testing.T) {
	raw, err := NewRegistry().Generate("circle_graph", map[string]interface{}{
		"num_nodes": 3,
		"node_att":  map[string]interface{}{"memory": 4},
	})
	require.NoError(t, err)

	attrs := raw.Nodes[0].Attributes
	assert.Equal(t, valueobjects.MustNumber(4), attrs["memory"])
	assert.Equal(t, valueobjects.MustNumber(3), attrs["attack_len"])
	assert.Equal(t, valueobjects.BoolValue(true), attrs["target"])
	assert.Equal(t, valueobjects.MustNumber(1), raw.Edges[0].Attributes["len"])
}

func TestRegistry_DiamondTargets(t *testing.T) {
	raw, err := NewRegistry().Generate("diamond", map[string]interface{}{"values": []interface{}{7}})
	require.NoError(t, err)

	byID := map[string]int{}
	for i, n := range raw.Nodes {
		byID[n.ID] = i
	}
	require.Contains(t, byID, "n_0_v_7")
	target := raw.Nodes[byID["n_0_v_7"]]
	assert.Equal(t, valueobjects.MustNumber(7), target.Attributes["value"])
	assert.Equal(t, valueobjects.BoolValue(false), raw.Nodes[byID["start"]].Attributes["target"])
}

func TestRegistry_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		params   map[string]interface{}
		check    func(error) bool
	}{
		{"unknown template", "spiral", nil, pkgerrors.IsNotFound},
		{"missing required", "circle_graph", map[string]interface{}{}, pkgerrors.IsValidation},
		{"wrong type", "complete_graph", map[string]interface{}{"num_nodes": "many"}, pkgerrors.IsValidation},
		{"out of range", "complete_graph", map[string]interface{}{"num_nodes": 0}, pkgerrors.IsValidation},
		{"empty values", "diamond", map[string]interface{}{"values": []interface{}{}}, pkgerrors.IsValidation},
	}

	r := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Generate(tt.template, tt.params)
			assert.True(t, tt.check(err), "got %v", err)
		})
	}
}
