package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
)

func num(n float64) valueobjects.AttrValue { return valueobjects.MustNumber(n) }

// buildGraph creates nodes 1..3 with attribute sets {a,b,c}, {a,c,d}, {a,c}
// and edges 1->2 {a}, 2->3 {}.
func buildGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	g := aggregates.NewGraph(true)
	sets := [][]string{{"a", "b", "c"}, {"a", "c", "d"}, {"a", "c"}}
	for _, names := range sets {
		id, err := g.AddNode(valueobjects.MustPosition(0, 0))
		require.NoError(t, err)
		for _, name := range names {
			require.NoError(t, g.SetAttribute(entities.NodeRef(id), name, num(1)))
		}
	}
	require.NoError(t, g.AddEdge("1", "2", entities.Attributes{"a": num(2)}))
	require.NoError(t, g.AddEdge("2", "3", nil))
	return g
}

func TestCompute_CommonAttributes(t *testing.T) {
	g := buildGraph(t)

	tests := []struct {
		name  string
		nodes []entities.ElementRef
		edges []entities.ElementRef
		want  []string
	}{
		{
			name:  "three nodes intersect",
			nodes: []entities.ElementRef{entities.NodeRef("1"), entities.NodeRef("2"), entities.NodeRef("3")},
			want:  []string{"a", "c"},
		},
		{
			name:  "single node keeps all names sorted",
			nodes: []entities.ElementRef{entities.NodeRef("2")},
			want:  []string{"a", "c", "d"},
		},
		{
			name:  "mixed nodes and edges",
			nodes: []entities.ElementRef{entities.NodeRef("1")},
			edges: []entities.ElementRef{entities.EdgeRef("1", "2")},
			want:  []string{"a"},
		},
		{
			name:  "edge without attributes empties the set",
			nodes: []entities.ElementRef{entities.NodeRef("1")},
			edges: []entities.ElementRef{entities.EdgeRef("2", "3")},
			want:  []string{},
		},
		{
			name: "nothing selected",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Compute(tt.nodes, tt.edges, g)
			assert.Equal(t, tt.want, snap.CommonAttrs)
		})
	}
}

func TestCompute_IndicesFollowStoreOrder(t *testing.T) {
	g := buildGraph(t)

	snap := Compute(
		[]entities.ElementRef{entities.NodeRef("3"), entities.NodeRef("1")},
		[]entities.ElementRef{entities.EdgeRef("1", "2")},
		g,
	)

	require.Equal(t, []int{0, 2, 3}, snap.ElementIndices)
	for i, idx := range snap.ElementIndices {
		element, ok := g.At(idx)
		require.True(t, ok)
		assert.True(t, []entities.ElementRef{
			entities.NodeRef("1"), entities.NodeRef("3"), entities.EdgeRef("1", "2"),
		}[i].Matches(element))
	}
	assert.Len(t, snap.Nodes, 2)
	assert.Len(t, snap.Edges, 1)
	assert.Len(t, snap.Elements, 3)
}

func TestCompute_StaleDescriptorsAreSkipped(t *testing.T) {
	g := buildGraph(t)

	snap := Compute(
		[]entities.ElementRef{entities.NodeRef("1"), entities.NodeRef("42")},
		[]entities.ElementRef{entities.EdgeRef("3", "1")},
		g,
	)

	assert.Equal(t, []int{0}, snap.ElementIndices)
	assert.Equal(t, 2, snap.Stale)
	assert.Equal(t, []entities.ElementRef{entities.NodeRef("1")}, snap.Nodes)
	assert.Empty(t, snap.Edges)
	assert.Equal(t, []string{"a", "b", "c"}, snap.CommonAttrs)
}

func TestCompute_NilAndDuplicateInput(t *testing.T) {
	g := buildGraph(t)

	snap := Compute(nil, nil, g)
	assert.True(t, snap.IsEmpty())
	assert.NotNil(t, snap.Nodes)

	snap = Compute([]entities.ElementRef{entities.NodeRef("2"), entities.NodeRef("2")}, nil, g)
	assert.Equal(t, []int{1}, snap.ElementIndices)

	ref, ok := snap.SingleNode()
	assert.True(t, ok)
	assert.Equal(t, "2", ref.ID)
}

func TestSnapshot_CloneDoesNotAlias(t *testing.T) {
	g := buildGraph(t)
	snap := Compute([]entities.ElementRef{entities.NodeRef("1")}, nil, g)

	clone := snap.Clone()
	clone.CommonAttrs[0] = "zzz"
	clone.ElementIndices[0] = 9

	assert.Equal(t, "a", snap.CommonAttrs[0])
	assert.Equal(t, 0, snap.ElementIndices[0])
}
