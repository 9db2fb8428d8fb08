package commands

import (
	"grapheditor/domain/core/valueobjects"
	"grapheditor/pkg/utils"
)

// RowEditInput is one attribute row when its confirm button fires
type RowEditInput struct {
	Key     string `json:"key" validate:"required"`
	NewName string `json:"new_name"`
	Kind    string `json:"kind" validate:"omitempty,oneof=boolean number text structured bool num string dict json"`
	// Value is absent for rows that show a value count
	Value *string `json:"value,omitempty"`
}

// ConfirmEditCommand confirms edited attribute rows and, for a single
// selected node, its label
type ConfirmEditCommand struct {
	SessionID string               `json:"session_id" validate:"required"`
	Trigger   valueobjects.Trigger `json:"trigger"`
	Rows      []RowEditInput       `json:"rows" validate:"dive"`
	Label     *string              `json:"label,omitempty"`
}

// Validate validates the command
func (c *ConfirmEditCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// AddAttributeCommand adds an attribute to every selected element. A missing
// value means the value input was not rendered.
type AddAttributeCommand struct {
	SessionID string                  `json:"session_id" validate:"required"`
	Clicks    valueobjects.ClickToken `json:"clicks"`
	Name      string                  `json:"name"`
	Kind      string                  `json:"kind" validate:"required,oneof=boolean number text structured bool num string dict json"`
	Value     *string                 `json:"value,omitempty"`
}

// Validate validates the command
func (c *AddAttributeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// RemoveAttributeCommand removes the attribute a panel row shows
type RemoveAttributeCommand struct {
	SessionID string               `json:"session_id" validate:"required"`
	Trigger   valueobjects.Trigger `json:"trigger"`
	RowKey    string               `json:"row_key" validate:"required"`
}

// Validate validates the command
func (c *RemoveAttributeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// EditLabelCommand confirms the label of the single selected node
type EditLabelCommand struct {
	SessionID string                  `json:"session_id" validate:"required"`
	Clicks    valueobjects.ClickToken `json:"clicks"`
	Label     string                  `json:"label"`
}

// Validate validates the command
func (c *EditLabelCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// OpenRowEditCommand puts a panel row into edit mode
type OpenRowEditCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	RowKey    string `json:"row_key" validate:"required"`
}

// Validate validates the command
func (c *OpenRowEditCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// CancelRowEditCommand leaves edit mode without changes
type CancelRowEditCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	RowKey    string `json:"row_key" validate:"required"`
}

// Validate validates the command
func (c *CancelRowEditCommand) Validate() error {
	return utils.ValidateStruct(c)
}
