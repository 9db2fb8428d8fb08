// Package handlers answers editor queries from the application services.
package handlers

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"grapheditor/application/ports"
	"grapheditor/application/queries"
	"grapheditor/application/queries/bus"
	"grapheditor/application/services"
	"grapheditor/domain/session"
	"grapheditor/domain/versioning"
	"grapheditor/pkg/common"
)

// QueryHandlers answers every editor query
type QueryHandlers struct {
	editor    *services.EditorService
	documents *services.DocumentService
	generator *services.GeneratorService
	logger    *zap.Logger
}

// NewQueryHandlers creates the query handlers
func NewQueryHandlers(
	editor *services.EditorService,
	documents *services.DocumentService,
	generator *services.GeneratorService,
	logger *zap.Logger,
) *QueryHandlers {
	return &QueryHandlers{
		editor:    editor,
		documents: documents,
		generator: generator,
		logger:    logger,
	}
}

// Register adds every query to the bus. The template list never changes at
// runtime, so it is served through cache when one is given.
func (h *QueryHandlers) Register(b *bus.QueryBus, cache bus.Cache, cacheTTL int) error {
	if err := b.Register(&queries.GetSessionViewQuery{}, bus.Typed(h.HandleGetSessionView)); err != nil {
		return err
	}
	if err := b.Register(&queries.ExportGraphQuery{}, bus.Typed(h.HandleExportGraph)); err != nil {
		return err
	}

	var templateMiddleware []bus.Middleware
	if cache != nil {
		templateMiddleware = append(templateMiddleware, bus.CachingMiddleware(cache, cacheTTL))
	}
	if err := b.Register(&queries.ListTemplatesQuery{}, bus.Typed(h.HandleListTemplates), templateMiddleware...); err != nil {
		return err
	}

	if err := b.Register(&queries.ListDocumentsQuery{}, bus.Typed(h.HandleListDocuments)); err != nil {
		return err
	}
	if err := b.Register(&queries.ListRevisionsQuery{}, bus.Typed(h.HandleListRevisions)); err != nil {
		return err
	}
	return b.Register(&queries.GetDocumentQuery{}, bus.Typed(h.HandleGetDocument))
}

// HandleGetSessionView returns the current session view
func (h *QueryHandlers) HandleGetSessionView(ctx context.Context, q *queries.GetSessionViewQuery) (*services.SessionView, error) {
	return h.editor.View(ctx, session.ID(q.SessionID))
}

// HandleExportGraph serializes the session graph
func (h *QueryHandlers) HandleExportGraph(ctx context.Context, q *queries.ExportGraphQuery) (*queries.ExportResult, error) {
	format := ports.Format(q.Format)
	data, err := h.documents.Export(ctx, session.ID(q.SessionID), format)
	if err != nil {
		return nil, err
	}

	result := &queries.ExportResult{Format: format, Data: data}
	switch format {
	case ports.FormatYAML:
		result.ContentType = "application/yaml"
		result.Filename = "graph.yaml"
	default:
		result.ContentType = "application/json"
		result.Filename = "graph.json"
	}
	return result, nil
}

// HandleListTemplates lists the generators
func (h *QueryHandlers) HandleListTemplates(ctx context.Context, q *queries.ListTemplatesQuery) ([]ports.TemplateInfo, error) {
	return h.generator.Templates(), nil
}

// HandleListDocuments returns one page of stored document metadata
func (h *QueryHandlers) HandleListDocuments(ctx context.Context, q *queries.ListDocumentsQuery) (*common.PaginatedResult, error) {
	docs, err := h.documents.List(ctx)
	if err != nil {
		return nil, err
	}

	sortDocuments(docs, q.SortBy, q.Order)

	return common.Paginate(docs, q.Page, q.PageSize), nil
}

// HandleGetDocument returns a stored document
func (h *QueryHandlers) HandleGetDocument(ctx context.Context, q *queries.GetDocumentQuery) (ports.StoredDocument, error) {
	return h.documents.Get(ctx, q.Name)
}

// HandleListRevisions returns the revision history of a stored document
func (h *QueryHandlers) HandleListRevisions(ctx context.Context, q *queries.ListRevisionsQuery) ([]versioning.DocumentVersion, error) {
	return h.documents.Revisions(ctx, q.Name)
}

func sortDocuments(docs []versioning.DocumentVersion, sortBy, order string) {
	less := func(a, b versioning.DocumentVersion) bool {
		if sortBy == "saved_at" {
			return a.SavedAt.Before(b.SavedAt)
		}
		return a.Name < b.Name
	}
	sort.SliceStable(docs, func(i, j int) bool {
		if order == "desc" {
			return less(docs[j], docs[i])
		}
		return less(docs[i], docs[j])
	})
}
