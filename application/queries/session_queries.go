// Package queries holds the read side of the editor.
package queries

import (
	"grapheditor/application/ports"
	"grapheditor/pkg/utils"
)

// GetSessionViewQuery fetches everything a client renders for one session
type GetSessionViewQuery struct {
	SessionID string `json:"session_id" validate:"required"`
}

// Validate validates the query
func (q *GetSessionViewQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ExportGraphQuery serializes the session graph as a document
type ExportGraphQuery struct {
	SessionID string `json:"session_id" validate:"required"`
	Format    string `json:"format" validate:"required,oneof=json yaml"`
}

// Validate validates the query
func (q *ExportGraphQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ExportResult is a downloadable document
type ExportResult struct {
	Format      ports.Format `json:"format"`
	ContentType string       `json:"content_type"`
	Filename    string       `json:"filename"`
	Data        []byte       `json:"data"`
}

// ListTemplatesQuery lists the registered graph generators
type ListTemplatesQuery struct{}

// Validate validates the query
func (q *ListTemplatesQuery) Validate() error {
	return nil
}
