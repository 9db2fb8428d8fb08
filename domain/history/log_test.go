package history

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
)

const click = valueobjects.ClickToken(1)

// state builds a snapshot holding one node whose label encodes the name
func state(t *testing.T, name string) aggregates.Snapshot {
	t.Helper()
	node, err := entities.NewNode("1", name, valueobjects.MustPosition(0, 0), nil)
	require.NoError(t, err)
	return aggregates.NewSnapshot([]entities.Element{node})
}

func TestLog_RecordNoOpEdit(t *testing.T) {
	log := NewLog(0)
	s := state(t, "S")

	assert.False(t, log.Record(s, s))
	assert.Equal(t, 0, log.Len())

	require.True(t, log.Record(s, state(t, "T")))
	before := log.Len()
	assert.False(t, log.Record(state(t, "T"), state(t, "T")))
	assert.Equal(t, before, log.Len())
}

func TestLog_RecordDeduplicatesBefore(t *testing.T) {
	log := NewLog(0)
	a, b, c := state(t, "A"), state(t, "B"), state(t, "C")

	log.Record(a, b)
	log.Record(b, c)

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, 2, log.Cursor())

	// an edit whose before differs from the current entry pushes both
	log.Record(a, b)
	assert.Equal(t, 5, log.Len())
}

func TestLog_BranchTruncation(t *testing.T) {
	log := NewLog(0)
	a, b, c, d := state(t, "A"), state(t, "B"), state(t, "C"), state(t, "D")

	log.Record(a, b)
	log.Record(b, c)

	got, ok := log.Undo(click)
	require.True(t, ok)
	assert.True(t, got.Equals(b))

	log.Record(b, d)
	assert.False(t, log.CanRedo())

	_, ok = log.Redo(click)
	assert.False(t, ok, "future must be discarded")

	current, ok := log.Current()
	require.True(t, ok)
	assert.True(t, current.Equals(d))
	assert.Equal(t, 3, log.Len())
}

func TestLog_UndoRedoGuards(t *testing.T) {
	log := NewLog(0)

	_, ok := log.Undo(click)
	assert.False(t, ok, "empty log")
	_, ok = log.Redo(click)
	assert.False(t, ok, "empty log")

	log.Record(state(t, "A"), state(t, "B"))

	_, ok = log.Undo(0)
	assert.False(t, ok, "zero click token")
	assert.Equal(t, 1, log.Cursor())

	_, ok = log.Redo(click)
	assert.False(t, ok, "already at tail")

	_, ok = log.Undo(click)
	require.True(t, ok)
	_, ok = log.Undo(click)
	assert.False(t, ok, "nothing before the first entry")

	_, ok = log.Redo(-1)
	assert.False(t, ok, "negative click token")
}

func TestLog_RoundTripProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 20; run++ {
		t.Run(fmt.Sprintf("run-%d", run), func(t *testing.T) {
			log := NewLog(0)
			n := 1 + rng.Intn(10)
			states := []aggregates.Snapshot{state(t, "S0")}
			for i := 1; i <= n; i++ {
				states = append(states, state(t, fmt.Sprintf("S%d", i)))
				require.True(t, log.Record(states[i-1], states[i]))
			}

			for i := 0; i < n; i++ {
				_, ok := log.Undo(click)
				require.True(t, ok)
			}
			current, _ := log.Current()
			assert.True(t, current.Equals(states[0]))

			for i := 0; i < n; i++ {
				_, ok := log.Redo(click)
				require.True(t, ok)
			}
			current, _ = log.Current()
			assert.True(t, current.Equals(states[n]))
		})
	}
}

func TestLog_Limit(t *testing.T) {
	log := NewLog(3)
	prev := state(t, "S0")
	for i := 1; i <= 5; i++ {
		next := state(t, fmt.Sprintf("S%d", i))
		log.Record(prev, next)
		prev = next
	}

	assert.Equal(t, 3, log.Len())
	assert.Equal(t, 2, log.Cursor())

	got, ok := log.Undo(click)
	require.True(t, ok)
	assert.True(t, got.Equals(state(t, "S4")))

	log.SetLimit(1)
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, 0, log.Cursor())
}

func TestLog_CloneIsIndependent(t *testing.T) {
	log := NewLog(0)
	log.Record(state(t, "A"), state(t, "B"))

	clone := log.Clone()
	clone.Undo(click)
	clone.Record(state(t, "A"), state(t, "C"))

	assert.Equal(t, 1, log.Cursor())
	current, _ := log.Current()
	assert.True(t, current.Equals(state(t, "B")))
}

// Two nodes and an edge recorded as one edit go away with one undo and come back with one redo.
func TestLog_NodeAndEdgeScenario(t *testing.T) {
	g := aggregates.NewGraph(false)
	first, err := g.AddNode(valueobjects.MustPosition(0, 0))
	require.NoError(t, err)
	assert.Equal(t, "1", first)
	before := g.Snapshot()

	second, err := g.AddNode(valueobjects.MustPosition(10, 10))
	require.NoError(t, err)
	assert.Equal(t, "2", second)
	require.NoError(t, g.AddEdge("1", "2", nil))
	after := g.Snapshot()

	log := NewLog(0)
	require.True(t, log.Record(before, after))
	assert.Equal(t, 2, log.Len())

	undone, ok := log.Undo(click)
	require.True(t, ok)
	g.Restore(undone)
	assert.Equal(t, 1, g.NodeCount())
	assert.Equal(t, 0, g.EdgeCount())

	redone, ok := log.Redo(click)
	require.True(t, ok)
	g.Restore(redone)
	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
}
