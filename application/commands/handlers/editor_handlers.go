// Package handlers connects editor commands to the application services.
package handlers

import (
	"context"

	"go.uber.org/zap"

	"grapheditor/application/commands"
	"grapheditor/application/commands/bus"
	"grapheditor/application/services"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/session"
)

// EditorHandlers handles the commands that edit one session
type EditorHandlers struct {
	editor *services.EditorService
	logger *zap.Logger
}

// NewEditorHandlers creates the session command handlers
func NewEditorHandlers(editor *services.EditorService, logger *zap.Logger) *EditorHandlers {
	return &EditorHandlers{editor: editor, logger: logger}
}

// Register adds every session command to the bus
func (h *EditorHandlers) Register(b *bus.CommandBus) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{&commands.CreateSessionCommand{}, bus.Typed(h.HandleCreateSession)},
		{&commands.DeleteSessionCommand{}, bus.Typed(h.HandleDeleteSession)},
		{&commands.ChangeSelectionCommand{}, bus.Typed(h.HandleChangeSelection)},
		{&commands.AddNodeCommand{}, bus.Typed(h.HandleAddNode)},
		{&commands.DeleteNodeCommand{}, bus.Typed(h.HandleDeleteNode)},
		{&commands.DeleteEdgeCommand{}, bus.Typed(h.HandleDeleteEdge)},
		{&commands.MoveNodeCommand{}, bus.Typed(h.HandleMoveNode)},
		{&commands.RebindEdgeCommand{}, bus.Typed(h.HandleRebindEdge)},
		{&commands.ConfirmEditCommand{}, bus.Typed(h.HandleConfirmEdit)},
		{&commands.AddAttributeCommand{}, bus.Typed(h.HandleAddAttribute)},
		{&commands.RemoveAttributeCommand{}, bus.Typed(h.HandleRemoveAttribute)},
		{&commands.EditLabelCommand{}, bus.Typed(h.HandleEditLabel)},
		{&commands.OpenRowEditCommand{}, bus.Typed(h.HandleOpenRowEdit)},
		{&commands.CancelRowEditCommand{}, bus.Typed(h.HandleCancelRowEdit)},
		{&commands.UndoCommand{}, bus.Typed(h.HandleUndo)},
		{&commands.RedoCommand{}, bus.Typed(h.HandleRedo)},
		{&commands.NewGraphCommand{}, bus.Typed(h.HandleNewGraph)},
		{&commands.SetDirectedCommand{}, bus.Typed(h.HandleSetDirected)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// HandleCreateSession creates a session
func (h *EditorHandlers) HandleCreateSession(ctx context.Context, cmd *commands.CreateSessionCommand) error {
	_, err := h.editor.CreateSession(ctx, session.ID(cmd.SessionID), cmd.Directed)
	return err
}

// HandleDeleteSession deletes a session
func (h *EditorHandlers) HandleDeleteSession(ctx context.Context, cmd *commands.DeleteSessionCommand) error {
	return h.editor.DeleteSession(ctx, session.ID(cmd.SessionID))
}

// HandleChangeSelection stores a new selection
func (h *EditorHandlers) HandleChangeSelection(ctx context.Context, cmd *commands.ChangeSelectionCommand) error {
	_, err := h.editor.ChangeSelection(ctx, session.ID(cmd.SessionID), cmd.Nodes, cmd.Edges)
	return err
}

// HandleAddNode adds a node
func (h *EditorHandlers) HandleAddNode(ctx context.Context, cmd *commands.AddNodeCommand) error {
	pos, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return err
	}
	_, err = h.editor.AddNode(ctx, session.ID(cmd.SessionID), pos)
	return err
}

// HandleDeleteNode deletes a node and its reported incident edges
func (h *EditorHandlers) HandleDeleteNode(ctx context.Context, cmd *commands.DeleteNodeCommand) error {
	_, err := h.editor.DeleteNode(ctx, session.ID(cmd.SessionID), cmd.NodeID, cmd.IncidentEdges)
	return err
}

// HandleDeleteEdge deletes an edge
func (h *EditorHandlers) HandleDeleteEdge(ctx context.Context, cmd *commands.DeleteEdgeCommand) error {
	_, err := h.editor.DeleteEdge(ctx, session.ID(cmd.SessionID), cmd.Source, cmd.Target)
	return err
}

// HandleMoveNode moves a node, dragging the rest of a multi-node selection along
func (h *EditorHandlers) HandleMoveNode(ctx context.Context, cmd *commands.MoveNodeCommand) error {
	pos, err := valueobjects.NewPosition(cmd.X, cmd.Y)
	if err != nil {
		return err
	}
	_, err = h.editor.MoveNode(ctx, session.ID(cmd.SessionID), cmd.NodeID, pos)
	return err
}

// HandleRebindEdge creates an edge from a draw gesture
func (h *EditorHandlers) HandleRebindEdge(ctx context.Context, cmd *commands.RebindEdgeCommand) error {
	_, err := h.editor.RebindEdge(ctx, session.ID(cmd.SessionID), cmd.Source, cmd.Target)
	return err
}

// HandleConfirmEdit applies edited attribute rows
func (h *EditorHandlers) HandleConfirmEdit(ctx context.Context, cmd *commands.ConfirmEditCommand) error {
	rows := make([]services.RowInput, 0, len(cmd.Rows))
	for _, r := range cmd.Rows {
		in := services.RowInput{Key: r.Key, NewName: r.NewName, RawValue: r.Value}
		if r.Kind != "" {
			kind, err := valueobjects.ParseValueKind(r.Kind)
			if err != nil {
				return err
			}
			in.Kind = kind
		}
		rows = append(rows, in)
	}
	_, err := h.editor.ConfirmEdit(ctx, session.ID(cmd.SessionID), cmd.Trigger, rows, cmd.Label)
	return err
}

// HandleAddAttribute adds an attribute to the selection
func (h *EditorHandlers) HandleAddAttribute(ctx context.Context, cmd *commands.AddAttributeCommand) error {
	kind, err := valueobjects.ParseValueKind(cmd.Kind)
	if err != nil {
		return err
	}
	_, err = h.editor.AddAttribute(ctx, session.ID(cmd.SessionID), cmd.Clicks, cmd.Name, kind, cmd.Value)
	return err
}

// HandleRemoveAttribute removes an attribute from the selection
func (h *EditorHandlers) HandleRemoveAttribute(ctx context.Context, cmd *commands.RemoveAttributeCommand) error {
	_, err := h.editor.RemoveAttribute(ctx, session.ID(cmd.SessionID), cmd.Trigger, cmd.RowKey)
	return err
}

// HandleEditLabel relabels the selected node
func (h *EditorHandlers) HandleEditLabel(ctx context.Context, cmd *commands.EditLabelCommand) error {
	_, err := h.editor.EditLabel(ctx, session.ID(cmd.SessionID), cmd.Clicks, cmd.Label)
	return err
}

// HandleOpenRowEdit opens a row for editing
func (h *EditorHandlers) HandleOpenRowEdit(ctx context.Context, cmd *commands.OpenRowEditCommand) error {
	_, err := h.editor.OpenRowEdit(ctx, session.ID(cmd.SessionID), cmd.RowKey)
	return err
}

// HandleCancelRowEdit cancels a row edit
func (h *EditorHandlers) HandleCancelRowEdit(ctx context.Context, cmd *commands.CancelRowEditCommand) error {
	_, err := h.editor.CancelRowEdit(ctx, session.ID(cmd.SessionID), cmd.RowKey)
	return err
}

// HandleUndo steps back
func (h *EditorHandlers) HandleUndo(ctx context.Context, cmd *commands.UndoCommand) error {
	_, err := h.editor.Undo(ctx, session.ID(cmd.SessionID), cmd.Clicks)
	return err
}

// HandleRedo steps forward
func (h *EditorHandlers) HandleRedo(ctx context.Context, cmd *commands.RedoCommand) error {
	_, err := h.editor.Redo(ctx, session.ID(cmd.SessionID), cmd.Clicks)
	return err
}

// HandleNewGraph clears the graph
func (h *EditorHandlers) HandleNewGraph(ctx context.Context, cmd *commands.NewGraphCommand) error {
	_, err := h.editor.NewGraph(ctx, session.ID(cmd.SessionID), cmd.Clicks)
	return err
}

// HandleSetDirected switches directedness
func (h *EditorHandlers) HandleSetDirected(ctx context.Context, cmd *commands.SetDirectedCommand) error {
	_, err := h.editor.SetDirected(ctx, session.ID(cmd.SessionID), cmd.Directed)
	return err
}
