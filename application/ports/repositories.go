package ports

import (
	"context"

	"grapheditor/domain/document"
	"grapheditor/domain/session"
	"grapheditor/domain/versioning"
)

// SessionRepository stores live editing sessions
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type SessionRepository interface {
	// Save persists a session (create or update)
	Save(ctx context.Context, s *session.Session) error

	// GetByID retrieves a session by its ID
	GetByID(ctx context.Context, id session.ID) (*session.Session, error)

	// Delete removes a session
	Delete(ctx context.Context, id session.ID) error

	// Count returns the number of live sessions
	Count(ctx context.Context) (int, error)
}

// SessionLocker serializes operations on one session. Every user action holds
// the lock for its whole read-modify-write cycle.
type SessionLocker interface {
	Lock(ctx context.Context, id session.ID) (unlock func(), err error)
}

// StoredDocument is a saved graph together with its revision metadata
type StoredDocument struct {
	Meta     versioning.DocumentVersion `json:"meta"`
	Document document.Document          `json:"document"`
}

// DocumentStore persists named documents
type DocumentStore interface {
	// Save stores a new revision. expectedVersion is the revision the caller
	// based its save on, 0 for a new document.
	Save(ctx context.Context, doc StoredDocument, expectedVersion int) error

	// Get retrieves the latest revision of a document
	Get(ctx context.Context, name string) (StoredDocument, error)

	// List returns metadata of every stored document
	List(ctx context.Context) ([]versioning.DocumentVersion, error)

	// Revisions returns the metadata of every stored revision, oldest first
	Revisions(ctx context.Context, name string) ([]versioning.DocumentVersion, error)

	// Delete removes a document
	Delete(ctx context.Context, name string) error
}
