// Package history keeps the linear undo/redo log of graph snapshots.
package history

import (
	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/valueobjects"
)

// Log is a sequence of full graph snapshots with a cursor on the active one.
// Entries after the cursor are the redo-able future; recording a new edit
// after an undo discards them.
type Log struct {
	cursor    int
	snapshots []aggregates.Snapshot
	limit     int
}

// NewLog creates an empty log. A positive limit caps the number of stored
// snapshots; the oldest are dropped first.
func NewLog(limit int) *Log {
	return &Log{cursor: -1, limit: limit}
}

// Record logs an edit that turned before into after. Edits that changed
// nothing are dropped. before is only pushed when it differs from the entry
// under the cursor, so consecutive edits do not double up.
func (l *Log) Record(before, after aggregates.Snapshot) bool {
	if before.Equals(after) {
		return false
	}

	l.snapshots = l.snapshots[:l.cursor+1]
	if l.cursor < 0 || !l.snapshots[l.cursor].Equals(before) {
		l.push(before)
	}
	l.push(after)
	l.enforceLimit()
	return true
}

// Undo steps back one entry. It is a no-op when nothing precedes the cursor
// or the token does not come from a real click.
func (l *Log) Undo(token valueobjects.ClickToken) (aggregates.Snapshot, bool) {
	if !token.Fired() || !l.CanUndo() {
		return aggregates.Snapshot{}, false
	}
	l.cursor--
	return l.snapshots[l.cursor], true
}

// Redo steps forward one entry. It is a no-op at the tail or when the token
// does not come from a real click.
func (l *Log) Redo(token valueobjects.ClickToken) (aggregates.Snapshot, bool) {
	if !token.Fired() || !l.CanRedo() {
		return aggregates.Snapshot{}, false
	}
	l.cursor++
	return l.snapshots[l.cursor], true
}

// CanUndo reports whether an entry precedes the cursor
func (l *Log) CanUndo() bool {
	return l.cursor > 0
}

// CanRedo reports whether an entry follows the cursor
func (l *Log) CanRedo() bool {
	return l.cursor >= 0 && l.cursor < len(l.snapshots)-1
}

// Cursor returns the active entry index, -1 for an empty log
func (l *Log) Cursor() int {
	return l.cursor
}

// Len returns the number of stored snapshots
func (l *Log) Len() int {
	return len(l.snapshots)
}

// Current returns the snapshot under the cursor
func (l *Log) Current() (aggregates.Snapshot, bool) {
	if l.cursor < 0 {
		return aggregates.Snapshot{}, false
	}
	return l.snapshots[l.cursor], true
}

// Clear drops every entry
func (l *Log) Clear() {
	l.snapshots = nil
	l.cursor = -1
}

// SetLimit changes the cap and trims immediately
func (l *Log) SetLimit(limit int) {
	l.limit = limit
	l.enforceLimit()
}

// Clone returns an independent copy. Snapshots are immutable and can be shared.
func (l *Log) Clone() *Log {
	out := &Log{cursor: l.cursor, limit: l.limit}
	out.snapshots = append(out.snapshots, l.snapshots...)
	return out
}

func (l *Log) push(s aggregates.Snapshot) {
	l.snapshots = append(l.snapshots, s)
	l.cursor = len(l.snapshots) - 1
}

func (l *Log) enforceLimit() {
	if l.limit <= 0 || len(l.snapshots) <= l.limit {
		return
	}
	// oldest entries go first; the redo future only when the past is exhausted
	drop := min(len(l.snapshots)-l.limit, l.cursor)
	l.snapshots = append([]aggregates.Snapshot(nil), l.snapshots[drop:]...)
	l.cursor -= drop
	if len(l.snapshots) > l.limit {
		l.snapshots = l.snapshots[:l.limit]
	}
}
