package memory

import (
	"context"
	"fmt"
	"sync"

	"grapheditor/application/ports"
	"grapheditor/domain/versioning"
	pkgerrors "grapheditor/pkg/errors"
)

// DocumentStore keeps every saved revision of each document
type DocumentStore struct {
	mu        sync.RWMutex
	revisions map[string][]ports.StoredDocument
}

// NewDocumentStore creates an empty store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{revisions: make(map[string][]ports.StoredDocument)}
}

// Save stores a new revision if the latest one is still expectedVersion
func (s *DocumentStore) Save(ctx context.Context, doc ports.StoredDocument, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := doc.Meta.Name
	current := 0
	if revs := s.revisions[name]; len(revs) > 0 {
		current = revs[len(revs)-1].Meta.Version
	}
	if current != expectedVersion {
		return pkgerrors.NewConflictError(fmt.Sprintf(
			"document %q is at version %d, expected %d", name, current, expectedVersion,
		)).WithCode("VERSION_MISMATCH")
	}

	s.revisions[name] = append(s.revisions[name], doc)
	return nil
}

// Get retrieves the latest revision of a document
func (s *DocumentStore) Get(ctx context.Context, name string) (ports.StoredDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.revisions[name]
	if len(revs) == 0 {
		return ports.StoredDocument{}, pkgerrors.NewNotFoundError(fmt.Sprintf("document %q", name))
	}
	return revs[len(revs)-1], nil
}

// Revisions returns the metadata of every saved revision, oldest first
func (s *DocumentStore) Revisions(ctx context.Context, name string) ([]versioning.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.revisions[name]
	if len(revs) == 0 {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("document %q", name))
	}
	out := make([]versioning.DocumentVersion, 0, len(revs))
	for _, r := range revs {
		out = append(out, r.Meta)
	}
	return out, nil
}

// List returns the latest metadata of every stored document
func (s *DocumentStore) List(ctx context.Context) ([]versioning.DocumentVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]versioning.DocumentVersion, 0, len(s.revisions))
	for _, revs := range s.revisions {
		out = append(out, revs[len(revs)-1].Meta)
	}
	return out, nil
}

// Delete removes a document with all its revisions
func (s *DocumentStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.revisions[name]; !ok {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("document %q", name))
	}
	delete(s.revisions, name)
	return nil
}
