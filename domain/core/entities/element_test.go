package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grapheditor/domain/core/valueobjects"
	pkgerrors "grapheditor/pkg/errors"
)

func newTestNode(t *testing.T, id string, attrs Attributes) Element {
	t.Helper()
	node, err := NewNode(id, id, valueobjects.MustPosition(0, 0), attrs)
	require.NoError(t, err)
	return node
}

func TestNewElement_Validation(t *testing.T) {
	_, err := NewNode("", "x", valueobjects.MustPosition(0, 0), nil)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = NewEdge("1", "", nil)
	assert.True(t, pkgerrors.IsValidation(err))

	edge, err := NewEdge("1", "2", nil)
	require.NoError(t, err)
	assert.True(t, edge.IsEdge())
	assert.Equal(t, EdgeRef("1", "2"), edge.Ref())
}

func TestElement_MutatorsDoNotAliasReceiver(t *testing.T) {
	original := newTestNode(t, "1", Attributes{"a": valueobjects.MustNumber(1)})

	updated, err := original.WithAttribute("b", valueobjects.TextValue("x"))
	require.NoError(t, err)

	assert.False(t, original.HasAttribute("b"))
	assert.True(t, updated.HasAttribute("b"))
	assert.False(t, original.Equals(updated))

	attrs := updated.Attributes()
	attrs["c"] = valueobjects.BoolValue(true)
	assert.False(t, updated.HasAttribute("c"))
}

func TestElement_WithRenamedAttribute(t *testing.T) {
	node := newTestNode(t, "1", Attributes{
		"a": valueobjects.MustNumber(1),
		"b": valueobjects.MustNumber(2),
	})

	tests := []struct {
		name      string
		oldName   string
		newName   string
		wantNames []string
		check     func(error) bool
	}{
		{name: "rename keeps value", oldName: "a", newName: "z", wantNames: []string{"b", "z"}},
		{name: "same name is a no-op", oldName: "a", newName: "a", wantNames: []string{"a", "b"}},
		{name: "collision", oldName: "a", newName: "b", check: pkgerrors.IsValidation},
		{name: "empty new name", oldName: "a", newName: "", check: pkgerrors.IsValidation},
		{name: "missing attribute", oldName: "q", newName: "r", check: pkgerrors.IsStaleReference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renamed, err := node.WithRenamedAttribute(tt.oldName, tt.newName)
			if tt.check != nil {
				require.Error(t, err)
				assert.True(t, tt.check(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, renamed.AttributeNames())
			v, _ := renamed.Attribute(tt.newName)
			assert.Equal(t, valueobjects.MustNumber(1), v)
		})
	}
}

func TestElement_WithoutAttribute(t *testing.T) {
	node := newTestNode(t, "1", Attributes{"a": valueobjects.MustNumber(1)})

	stripped, err := node.WithoutAttribute("a")
	require.NoError(t, err)
	assert.Empty(t, stripped.AttributeNames())

	_, err = stripped.WithoutAttribute("a")
	assert.True(t, pkgerrors.IsStaleReference(err))
}

func TestElement_NodeOnlyOperations(t *testing.T) {
	edge, err := NewEdge("1", "2", nil)
	require.NoError(t, err)

	_, err = edge.WithLabel("x")
	assert.Error(t, err)
	_, err = edge.MovedTo(valueobjects.MustPosition(1, 1))
	assert.Error(t, err)

	node := newTestNode(t, "1", nil)
	relabeled, err := node.WithLabel("router")
	require.NoError(t, err)
	assert.Equal(t, "router", relabeled.Label())
	assert.Equal(t, "1", node.Label())
}

func TestElementRef_Matches(t *testing.T) {
	node := newTestNode(t, "1", nil)
	edge, err := NewEdge("1", "2", nil)
	require.NoError(t, err)

	assert.True(t, NodeRef("1").Matches(node))
	assert.False(t, NodeRef("2").Matches(node))
	assert.False(t, NodeRef("1").Matches(edge))
	assert.True(t, EdgeRef("1", "2").Matches(edge))
	assert.False(t, EdgeRef("2", "1").Matches(edge))
}
