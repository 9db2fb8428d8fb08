package commands

import (
	"grapheditor/pkg/utils"
)

// ImportGraphCommand loads an uploaded JSON or YAML document
type ImportGraphCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Format    string `json:"format" validate:"required,oneof=json yaml"`
	Data      []byte `json:"data" validate:"required,min=1"`
}

// Validate validates the command
func (c *ImportGraphCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// GenerateGraphCommand runs a registered template
type GenerateGraphCommand struct {
	SessionID string                 `json:"session_id" validate:"required"`
	Template  string                 `json:"template" validate:"required"`
	Params    map[string]interface{} `json:"params"`
}

// Validate validates the command
func (c *GenerateGraphCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// SaveDocumentCommand stores the session graph under a name
type SaveDocumentCommand struct {
	SessionID   string `json:"session_id" validate:"required"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// Validate validates the command
func (c *SaveDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// OpenDocumentCommand loads a stored document into the session
type OpenDocumentCommand struct {
	SessionID string `json:"session_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
}

// Validate validates the command
func (c *OpenDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}

// DeleteDocumentCommand removes a stored document
type DeleteDocumentCommand struct {
	Name string `json:"name" validate:"required"`
}

// Validate validates the command
func (c *DeleteDocumentCommand) Validate() error {
	return utils.ValidateStruct(c)
}
