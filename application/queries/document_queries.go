package queries

import (
	"grapheditor/pkg/utils"
)

// ListDocumentsQuery pages through the stored documents
type ListDocumentsQuery struct {
	Page     int    `json:"page" validate:"min=1"`
	PageSize int    `json:"page_size" validate:"min=1,max=100"`
	SortBy   string `json:"sort_by" validate:"omitempty,oneof=name saved_at"`
	Order    string `json:"order" validate:"omitempty,oneof=asc desc"`
}

// Validate validates the query
func (q *ListDocumentsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListRevisionsQuery fetches the revision history of a stored document
type ListRevisionsQuery struct {
	Name string `json:"name" validate:"required,max=200"`
}

// Validate validates the query
func (q *ListRevisionsQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetDocumentQuery fetches a stored document by name
type GetDocumentQuery struct {
	Name string `json:"name" validate:"required,max=200"`
}

// Validate validates the query
func (q *GetDocumentQuery) Validate() error {
	return utils.ValidateStruct(q)
}
