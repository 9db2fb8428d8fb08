// Package dto holds the HTTP request and response bodies that do not map
// one to one onto a command.
package dto

// CreateSessionRequest opens a session. An empty SessionID lets the server
// pick one.
type CreateSessionRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Directed  *bool  `json:"directed,omitempty"`
}

// SaveDocumentRequest stores the session graph under a name
type SaveDocumentRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OpenDocumentRequest loads a stored document into the session
type OpenDocumentRequest struct {
	Name string `json:"name"`
}

// GenerateRequest runs a template against the session
type GenerateRequest struct {
	Template string                 `json:"template"`
	Params   map[string]interface{} `json:"params"`
}
