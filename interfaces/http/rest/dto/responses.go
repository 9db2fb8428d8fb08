package dto

import (
	"grapheditor/domain/versioning"
)

// HealthResponse is returned by the health and readiness probes
type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions *int   `json:"active_sessions,omitempty"`
}

// DocumentSavedResponse describes the stored revision
type DocumentSavedResponse struct {
	Document versioning.DocumentVersion `json:"document"`
	Message  string                     `json:"message"`
}
