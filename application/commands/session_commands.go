package commands

import (
	"grapheditor/domain/core/valueobjects"
	"grapheditor/pkg/utils"
)

// CreateSessionCommand opens a session with an empty graph. The caller
// chooses the id.
type CreateSessionCommand struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Directed  bool   `json:"directed"`
}

// Validate validates the command
func (c *CreateSessionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteSessionCommand ends a session
type DeleteSessionCommand struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the command
func (c *DeleteSessionCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// UndoCommand steps back in the session history
type UndoCommand struct {
	SessionID string                  `json:"session_id" validate:"required"`
	Clicks    valueobjects.ClickToken `json:"clicks"`
}

// Validate validates the command
func (c *UndoCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// RedoCommand steps forward in the session history
type RedoCommand struct {
	SessionID string                  `json:"session_id" validate:"required"`
	Clicks    valueobjects.ClickToken `json:"clicks"`
}

// Validate validates the command
func (c *RedoCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// NewGraphCommand clears the session graph and its history
type NewGraphCommand struct {
	SessionID string                  `json:"session_id" validate:"required"`
	Clicks    valueobjects.ClickToken `json:"clicks"`
}

// Validate validates the command
func (c *NewGraphCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SetDirectedCommand switches the directedness mode
type SetDirectedCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Directed  bool   `json:"directed"`
}

// Validate validates the command
func (c *SetDirectedCommand) Validate() error {
	return utils.ValidateStruct(c)
}
