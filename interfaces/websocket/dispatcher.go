package websocket

import (
	"context"
	"encoding/json"

	"grapheditor/application/commands"
	"grapheditor/application/commands/bus"
	"grapheditor/application/queries"
	querybus "grapheditor/application/queries/bus"
	"grapheditor/application/services"
	pkgerrors "grapheditor/pkg/errors"
)

// Event names accepted from clients
const (
	EventSync            = "sync"
	EventSelect          = "select"
	EventAddNode         = "add_node"
	EventDeleteNode      = "delete_node"
	EventDeleteEdge      = "delete_edge"
	EventMoveNode        = "move_node"
	EventRebindEdge      = "rebind_edge"
	EventConfirmEdit     = "confirm_edit"
	EventAddAttribute    = "add_attribute"
	EventRemoveAttribute = "remove_attribute"
	EventEditLabel       = "edit_label"
	EventOpenRow         = "open_row"
	EventCancelRow       = "cancel_row"
	EventUndo            = "undo"
	EventRedo            = "redo"
	EventNewGraph        = "new_graph"
	EventSetDirected     = "set_directed"
	EventGenerate        = "generate"
)

var eventCommands = map[string]func() bus.Command{
	EventSelect:          func() bus.Command { return &commands.ChangeSelectionCommand{} },
	EventAddNode:         func() bus.Command { return &commands.AddNodeCommand{} },
	EventDeleteNode:      func() bus.Command { return &commands.DeleteNodeCommand{} },
	EventDeleteEdge:      func() bus.Command { return &commands.DeleteEdgeCommand{} },
	EventMoveNode:        func() bus.Command { return &commands.MoveNodeCommand{} },
	EventRebindEdge:      func() bus.Command { return &commands.RebindEdgeCommand{} },
	EventConfirmEdit:     func() bus.Command { return &commands.ConfirmEditCommand{} },
	EventAddAttribute:    func() bus.Command { return &commands.AddAttributeCommand{} },
	EventRemoveAttribute: func() bus.Command { return &commands.RemoveAttributeCommand{} },
	EventEditLabel:       func() bus.Command { return &commands.EditLabelCommand{} },
	EventOpenRow:         func() bus.Command { return &commands.OpenRowEditCommand{} },
	EventCancelRow:       func() bus.Command { return &commands.CancelRowEditCommand{} },
	EventUndo:            func() bus.Command { return &commands.UndoCommand{} },
	EventRedo:            func() bus.Command { return &commands.RedoCommand{} },
	EventNewGraph:        func() bus.Command { return &commands.NewGraphCommand{} },
	EventSetDirected:     func() bus.Command { return &commands.SetDirectedCommand{} },
	EventGenerate:        func() bus.Command { return &commands.GenerateGraphCommand{} },
}

// BusDispatcher turns inbound events into commands. Mutations reach every
// client of the session through the hub; the sender gets an acknowledgement.
type BusDispatcher struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
}

// NewBusDispatcher creates a dispatcher backed by the command and query buses
func NewBusDispatcher(commandBus *bus.CommandBus, queryBus *querybus.QueryBus) *BusDispatcher {
	return &BusDispatcher{commandBus: commandBus, queryBus: queryBus}
}

// Dispatch implements Dispatcher
func (d *BusDispatcher) Dispatch(ctx context.Context, sessionID string, msg InboundMessage) (interface{}, error) {
	if msg.Type == EventSync {
		return querybus.Ask[*services.SessionView](ctx, d.queryBus, &queries.GetSessionViewQuery{SessionID: sessionID})
	}

	factory, ok := eventCommands[msg.Type]
	if !ok {
		return nil, pkgerrors.NewValidationErrorf("unknown event %q", msg.Type).WithCode("UNKNOWN_EVENT")
	}

	cmd := factory()
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, cmd); err != nil {
			return nil, pkgerrors.NewValidationErrorf("invalid %s payload", msg.Type).WithCause(err)
		}
	}
	// the connection decides which session is edited, not the payload
	scope, _ := json.Marshal(map[string]string{"session_id": sessionID})
	if err := json.Unmarshal(scope, cmd); err != nil {
		return nil, pkgerrors.NewInternalError("failed to scope command").WithCause(err)
	}

	if err := d.commandBus.Send(ctx, cmd); err != nil {
		return nil, err
	}
	return nil, nil
}
