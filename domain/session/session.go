// Package session holds the per-user editing state: the graph, the current
// selection, the attribute panel and the undo/redo log.
package session

import (
	"time"

	"github.com/google/uuid"

	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/history"
	"grapheditor/domain/panel"
	"grapheditor/domain/selection"
)

// ID identifies an editing session
type ID string

// NewID creates a new random session id
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// Session is the state one browser tab edits. It is not safe for concurrent
// use; callers serialize access per session.
type Session struct {
	id        ID
	graph     *aggregates.Graph
	selection selection.Snapshot
	panel     panel.Panel
	history   *history.Log
	createdAt time.Time
	updatedAt time.Time
}

// New creates a session with an empty graph
func New(id ID, directed bool, historyLimit int) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		graph:     aggregates.NewGraph(directed),
		selection: selection.Empty(),
		panel:     panel.Panel{Rows: []panel.Row{}},
		history:   history.NewLog(historyLimit),
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session id
func (s *Session) ID() ID {
	return s.id
}

// Graph returns the live graph
func (s *Session) Graph() *aggregates.Graph {
	return s.graph
}

// Selection returns the stored selection snapshot
func (s *Session) Selection() selection.Snapshot {
	return s.selection.Clone()
}

// Panel returns the attribute panel state
func (s *Session) Panel() panel.Panel {
	return s.panel.Clone()
}

// History returns the undo/redo log
func (s *Session) History() *history.Log {
	return s.history
}

// CreatedAt returns the creation time
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns the time of the last change
func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

// ReplaceGraph swaps in a graph produced by a successful operation
func (s *Session) ReplaceGraph(g *aggregates.Graph) {
	s.graph = g
	s.touch()
}

// SetSelection stores a new selection together with its panel
func (s *Session) SetSelection(sel selection.Snapshot, p panel.Panel) {
	s.selection = sel.Clone()
	s.panel = p.Clone()
	s.touch()
}

// SetPanel stores panel changes that leave the selection as it is
func (s *Session) SetPanel(p panel.Panel) {
	s.panel = p.Clone()
	s.touch()
}

func (s *Session) touch() {
	s.updatedAt = time.Now()
}
