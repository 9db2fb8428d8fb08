package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"grapheditor/application/ports"
	"grapheditor/domain/document"
	"grapheditor/domain/session"
	"grapheditor/domain/versioning"
	pkgerrors "grapheditor/pkg/errors"
)

// DocumentService moves graphs between sessions and their serialized or
// stored form
type DocumentService struct {
	codec      ports.DocumentCodec
	store      ports.DocumentStore
	layout     ports.LayoutEngine
	versioning *versioning.VersioningService
	editor     *EditorService
	generator  *GeneratorService
	logger     *zap.Logger
}

// NewDocumentService creates a new document service
func NewDocumentService(
	codec ports.DocumentCodec,
	store ports.DocumentStore,
	layout ports.LayoutEngine,
	versioningService *versioning.VersioningService,
	editor *EditorService,
	generator *GeneratorService,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		codec:      codec,
		store:      store,
		layout:     layout,
		versioning: versioningService,
		editor:     editor,
		generator:  generator,
		logger:     logger,
	}
}

// Current returns the session graph as a document
func (s *DocumentService) Current(ctx context.Context, id session.ID) (document.Document, error) {
	view, err := s.editor.View(ctx, id)
	if err != nil {
		return document.Document{}, err
	}
	return document.FromElements(view.Elements, view.Directed), nil
}

// Export serializes the session graph. YAML output is wrapped in a
// hardcoded-loader envelope so it can be fed back as a generator file.
func (s *DocumentService) Export(ctx context.Context, id session.ID, format ports.Format) ([]byte, error) {
	doc, err := s.Current(ctx, id)
	if err != nil {
		return nil, err
	}
	var payload interface{} = doc
	if format == ports.FormatYAML {
		payload = doc.Wrap()
	}
	data, err := s.codec.Encode(format, payload)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to encode %s document", format)
	}
	return data, nil
}

// Import loads an uploaded document into the session. Envelopes naming a
// generator are handed to the generator service.
func (s *DocumentService) Import(ctx context.Context, id session.ID, format ports.Format, data []byte) (*SessionView, error) {
	doc, params, err := s.codec.Decode(format, data)
	if err != nil {
		return nil, err
	}
	if params != nil {
		return s.generator.Generate(ctx, id, params.Loader, params.LoaderParams)
	}
	return s.load(ctx, id, *doc, "import:"+string(format))
}

// Save stores the session graph under name as a new revision
func (s *DocumentService) Save(ctx context.Context, id session.ID, name, description string) (versioning.DocumentVersion, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return versioning.DocumentVersion{}, pkgerrors.NewValidationError("document name cannot be empty")
	}

	doc, err := s.Current(ctx, id)
	if err != nil {
		return versioning.DocumentVersion{}, err
	}

	var previous *versioning.DocumentVersion
	existing, err := s.store.Get(ctx, name)
	switch {
	case err == nil:
		previous = &existing.Meta
	case !pkgerrors.IsNotFound(err):
		return versioning.DocumentVersion{}, err
	}

	meta, err := s.versioning.NextVersion(name, description, doc, previous)
	if err != nil {
		return versioning.DocumentVersion{}, pkgerrors.NewInternalError("failed to version document").WithCause(err)
	}
	if previous != nil && previous.Checksum == meta.Checksum {
		s.logger.Debug("Document unchanged, skipping save", zap.String("document", name))
		return *previous, nil
	}

	expected := 0
	if previous != nil {
		expected = previous.Version
	}
	if err := s.store.Save(ctx, ports.StoredDocument{Meta: meta, Document: doc}, expected); err != nil {
		return versioning.DocumentVersion{}, err
	}

	s.logger.Info("Document saved",
		zap.String("sessionID", id.String()),
		zap.String("document", name),
		zap.Int("version", meta.Version),
	)
	return meta, nil
}

// Open loads a stored document into the session
func (s *DocumentService) Open(ctx context.Context, id session.ID, name string) (*SessionView, error) {
	stored, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id, stored.Document, "document:"+name)
}

// Get returns a stored document without loading it
func (s *DocumentService) Get(ctx context.Context, name string) (ports.StoredDocument, error) {
	return s.store.Get(ctx, name)
}

// List returns the stored documents
func (s *DocumentService) List(ctx context.Context) ([]versioning.DocumentVersion, error) {
	return s.store.List(ctx)
}

// Revisions returns the revision history of a stored document
func (s *DocumentService) Revisions(ctx context.Context, name string) ([]versioning.DocumentVersion, error) {
	return s.store.Revisions(ctx, name)
}

// Delete removes a stored document
func (s *DocumentService) Delete(ctx context.Context, name string) error {
	return s.store.Delete(ctx, name)
}

func (s *DocumentService) load(ctx context.Context, id session.ID, doc document.Document, source string) (*SessionView, error) {
	raw, err := doc.ToRaw()
	if err != nil {
		return nil, err
	}
	return s.editor.LoadRaw(ctx, id, raw, LayoutPositions(s.layout, raw), source)
}
