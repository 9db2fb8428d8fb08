package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"grapheditor/domain/core/aggregates"
	"grapheditor/domain/core/entities"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/document"
	"grapheditor/domain/events"
	"grapheditor/domain/panel"
	"grapheditor/domain/selection"
	"grapheditor/domain/session"
	pkgerrors "grapheditor/pkg/errors"
)

// RowInput is the content of one attribute row when its confirm button fires
type RowInput struct {
	Key     string
	NewName string
	// Kind overrides the row's value kind; empty keeps it
	Kind valueobjects.ValueKind
	// RawValue is nil when the row shows a value count
	RawValue *string
}

// ChangeSelection stores the selection the canvas reported
func (s *EditorService) ChangeSelection(ctx context.Context, id session.ID, nodes, edges []entities.ElementRef) (*SessionView, error) {
	return s.mutate(ctx, id, "change_selection", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		sel := selection.Compute(nodes, edges, work)
		s.reportStale(id, sel.Stale)
		return &outcome{graph: work, selection: &sel, history: historySkip}, nil
	})
}

// AddNode handles a double tap on the background
func (s *EditorService) AddNode(ctx context.Context, id session.ID, pos valueobjects.Position) (*SessionView, error) {
	return s.mutate(ctx, id, "add_node", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if _, err := s.canvas.AddNode(work, pos); err != nil {
			return nil, err
		}
		return &outcome{graph: work}, nil
	})
}

// DeleteNode handles a double tap on a node
func (s *EditorService) DeleteNode(ctx context.Context, id session.ID, nodeID string, incident []entities.Element) (*SessionView, error) {
	return s.mutate(ctx, id, "delete_node", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if _, err := s.canvas.DeleteNode(work, nodeID, incident); err != nil {
			return nil, err
		}
		return &outcome{graph: work}, nil
	})
}

// DeleteEdge handles a double tap on an edge
func (s *EditorService) DeleteEdge(ctx context.Context, id session.ID, source, target string) (*SessionView, error) {
	return s.mutate(ctx, id, "delete_edge", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if err := s.canvas.DeleteEdge(work, source, target); err != nil {
			return nil, err
		}
		return &outcome{graph: work}, nil
	})
}

// MoveNode handles the end of a node drag
func (s *EditorService) MoveNode(ctx context.Context, id session.ID, nodeID string, pos valueobjects.Position) (*SessionView, error) {
	return s.mutate(ctx, id, "move_node", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		sel := sess.Selection()
		if _, err := s.canvas.MoveNode(work, nodeID, pos, sel); err != nil {
			return nil, err
		}
		pnl := sess.Panel()
		return &outcome{graph: work, selection: &sel, panel: &pnl}, nil
	})
}

// RebindEdge handles a finished edge-draw gesture
func (s *EditorService) RebindEdge(ctx context.Context, id session.ID, source, target string) (*SessionView, error) {
	return s.mutate(ctx, id, "rebind_edge", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if err := s.canvas.RebindEdge(work, source, target); err != nil {
			return nil, err
		}
		return &outcome{graph: work}, nil
	})
}

// ConfirmEdit applies the edited attribute rows, and the label when a single
// node is selected, to the whole selection
func (s *EditorService) ConfirmEdit(
	ctx context.Context,
	id session.ID,
	trigger valueobjects.Trigger,
	rows []RowInput,
	label *string,
) (*SessionView, error) {
	return s.mutate(ctx, id, "confirm_edit", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if !trigger.IsRealClick() || sess.Selection().IsEmpty() {
			return nil, nil
		}
		pnl := sess.Panel()

		edits := make([]RowEdit, 0, len(rows))
		for _, in := range rows {
			row, ok := pnl.Find(in.Key)
			if !ok {
				return nil, pkgerrors.NewStaleReferenceError("attribute row " + in.Key)
			}
			edit := RowEdit{OldName: row.Name, NewName: in.NewName}
			if !row.ReadOnlyValue() && in.RawValue != nil {
				kind := in.Kind
				if kind == "" {
					kind = row.Kind
				}
				value, err := valueobjects.ParseAs(kind, *in.RawValue)
				if err != nil {
					return nil, pkgerrors.Wrapf(err, "attribute %s", row.Name)
				}
				edit.Value = &value
			}
			edits = append(edits, edit)
		}

		result, err := s.editor.ConfirmEdit(work, sess.Selection(), trigger, edits, label)
		if err != nil || !result.Applied {
			return nil, err
		}

		for i, in := range rows {
			pnl = pnl.Renamed(in.Key, edits[i].NewName, edits[i].Value)
		}
		if label != nil && pnl.Label != nil {
			pnl = pnl.Relabeled(*label)
		}
		return &outcome{graph: result.Graph, selection: &result.Selection, panel: &pnl}, nil
	})
}

// EditLabel confirms the label row of a single selected node
func (s *EditorService) EditLabel(ctx context.Context, id session.ID, clicks valueobjects.ClickToken, label string) (*SessionView, error) {
	return s.mutate(ctx, id, "edit_label", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		result, err := s.editor.EditLabel(work, sess.Selection(), clicks, label)
		if err != nil || !result.Applied {
			return nil, err
		}
		pnl := sess.Panel().Relabeled(label)
		return &outcome{graph: result.Graph, selection: &result.Selection, panel: &pnl}, nil
	})
}

// AddAttribute adds an attribute to the whole selection. A nil raw value
// means the value input was missing.
func (s *EditorService) AddAttribute(
	ctx context.Context,
	id session.ID,
	clicks valueobjects.ClickToken,
	name string,
	kind valueobjects.ValueKind,
	raw *string,
) (*SessionView, error) {
	return s.mutate(ctx, id, "add_attribute", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if !clicks.Fired() {
			return nil, nil
		}
		var value *valueobjects.AttrValue
		if raw != nil {
			parsed, err := valueobjects.ParseAs(kind, *raw)
			if err != nil {
				return nil, err
			}
			value = &parsed
		}

		result, err := s.editor.AddAttribute(work, sess.Selection(), clicks, name, value)
		if err != nil || !result.Applied {
			return nil, err
		}
		pnl := sess.Panel().Added(name, *value)
		return &outcome{graph: result.Graph, selection: &result.Selection, panel: &pnl}, nil
	})
}

// RemoveAttribute removes the attribute shown by a panel row from the whole selection
func (s *EditorService) RemoveAttribute(ctx context.Context, id session.ID, trigger valueobjects.Trigger, rowKey string) (*SessionView, error) {
	return s.mutate(ctx, id, "remove_attribute", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if !trigger.IsRealClick() || sess.Selection().IsEmpty() {
			return nil, nil
		}
		pnl := sess.Panel()
		row, ok := pnl.Find(rowKey)
		if !ok {
			return nil, pkgerrors.NewStaleReferenceError("attribute row " + rowKey)
		}

		result, err := s.editor.RemoveAttribute(work, sess.Selection(), trigger, row.Name)
		if err != nil || !result.Applied {
			return nil, err
		}
		pnl = pnl.Removed(rowKey)
		return &outcome{graph: result.Graph, selection: &result.Selection, panel: &pnl}, nil
	})
}

// OpenRowEdit switches a panel row into edit mode
func (s *EditorService) OpenRowEdit(ctx context.Context, id session.ID, rowKey string) (*SessionView, error) {
	return s.setRowEditing(ctx, id, rowKey, "open_row_edit", panel.Panel.OpenEdit)
}

// CancelRowEdit leaves edit mode without changing the graph
func (s *EditorService) CancelRowEdit(ctx context.Context, id session.ID, rowKey string) (*SessionView, error) {
	return s.setRowEditing(ctx, id, rowKey, "cancel_row_edit", panel.Panel.CancelEdit)
}

func (s *EditorService) setRowEditing(
	ctx context.Context,
	id session.ID,
	rowKey, operation string,
	fn func(panel.Panel, string) (panel.Panel, bool),
) (*SessionView, error) {
	return s.mutate(ctx, id, operation, func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		pnl, ok := fn(sess.Panel(), rowKey)
		if !ok {
			return nil, pkgerrors.NewStaleReferenceError("attribute row " + rowKey)
		}
		sel := sess.Selection()
		return &outcome{graph: work, selection: &sel, panel: &pnl, history: historySkip}, nil
	})
}

// Undo restores the previous snapshot
func (s *EditorService) Undo(ctx context.Context, id session.ID, clicks valueobjects.ClickToken) (*SessionView, error) {
	return s.navigate(ctx, id, "undo", clicks)
}

// Redo restores the next snapshot
func (s *EditorService) Redo(ctx context.Context, id session.ID, clicks valueobjects.ClickToken) (*SessionView, error) {
	return s.navigate(ctx, id, "redo", clicks)
}

func (s *EditorService) navigate(ctx context.Context, id session.ID, direction string, clicks valueobjects.ClickToken) (*SessionView, error) {
	return s.mutate(ctx, id, direction, func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		log := sess.History()
		step := log.Undo
		if direction == "redo" {
			step = log.Redo
		}
		snap, ok := step(clicks)
		if !ok {
			return nil, nil
		}
		work.Restore(snap)
		evt := events.NewHistoryNavigated(work.ID().String(), direction, log.Cursor(), time.Now())
		return &outcome{graph: work, history: historySkip, events: []events.DomainEvent{evt}}, nil
	})
}

// NewGraph clears the graph, restarts node ids and drops the history
func (s *EditorService) NewGraph(ctx context.Context, id session.ID, clicks valueobjects.ClickToken) (*SessionView, error) {
	return s.mutate(ctx, id, "new_graph", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if !clicks.Fired() {
			return nil, nil
		}
		work.Reset()
		sel := selection.Empty()
		return &outcome{graph: work, selection: &sel, history: historyClear}, nil
	})
}

// SetDirected switches the directedness mode used for new edges
func (s *EditorService) SetDirected(ctx context.Context, id session.ID, directed bool) (*SessionView, error) {
	return s.mutate(ctx, id, "set_directed", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		if work.Directed() == directed {
			return nil, nil
		}
		work.SetDirected(directed)
		sel := sess.Selection()
		pnl := sess.Panel()
		return &outcome{graph: work, selection: &sel, panel: &pnl, history: historySkip}, nil
	})
}

// LoadRaw replaces the graph with an imported or generated one. positions
// covers the nodes that came without coordinates.
func (s *EditorService) LoadRaw(
	ctx context.Context,
	id session.ID,
	raw document.RawGraph,
	positions map[string]valueobjects.Position,
	source string,
) (*SessionView, error) {
	return s.mutate(ctx, id, "load_graph", func(sess *session.Session, work *aggregates.Graph) (*outcome, error) {
		elements, err := document.ToElements(raw, positions)
		if err != nil {
			return nil, err
		}
		if err := work.Load(elements, raw.Directed, source); err != nil {
			return nil, err
		}
		s.logger.Info("Graph loaded",
			zap.String("sessionID", id.String()),
			zap.String("source", source),
			zap.Int("nodes", work.NodeCount()),
			zap.Int("edges", work.EdgeCount()),
		)
		sel := selection.Empty()
		return &outcome{graph: work, selection: &sel}, nil
	})
}
