package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"grapheditor/application/commands"
	"grapheditor/application/commands/bus"
	"grapheditor/application/ports"
	"grapheditor/application/queries"
	querybus "grapheditor/application/queries/bus"
	"grapheditor/domain/versioning"
	"grapheditor/interfaces/http/rest/dto"
	"grapheditor/pkg/common"
	pkgerrors "grapheditor/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DocumentHandler serves import, export, templates and stored documents
type DocumentHandler struct {
	base
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *DocumentHandler {
	return &DocumentHandler{base{
		commandBus: commandBus,
		queryBus:   queryBus,
		errors:     errorHandler,
		logger:     logger,
	}}
}

// SessionRoutes mounts the document endpoints scoped to a session
func (h *DocumentHandler) SessionRoutes(r chi.Router) {
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/generate", h.Generate)
	r.Post("/save", h.Save)
	r.Post("/open", h.Open)
}

// DocumentRoutes mounts the stored document endpoints
func (h *DocumentHandler) DocumentRoutes(r chi.Router) {
	r.Get("/", h.ListDocuments)
	r.Get("/{name}", h.GetDocument)
	r.Get("/{name}/revisions", h.ListRevisions)
	r.Delete("/{name}", h.DeleteDocument)
}

// Export handles GET /sessions/{sessionID}/export?format=json|yaml
func (h *DocumentHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(ports.FormatJSON)
	}

	result, err := querybus.Ask[*queries.ExportResult](r.Context(), h.queryBus, &queries.ExportGraphQuery{
		SessionID: sessionParam(r),
		Format:    format,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		h.logger.Warn("Failed to write export", zap.Error(err))
	}
}

// Import handles POST /sessions/{sessionID}/import. The document is either
// the raw body or the "file" part of a multipart form.
func (h *DocumentHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var (
		data     []byte
		filename string
		err      error
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, filename, err = readUpload(r)
	} else {
		data, err = io.ReadAll(r.Body)
	}
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("failed to read upload").WithCause(err))
		return
	}

	cmd := &commands.ImportGraphCommand{
		SessionID: sessionParam(r),
		Format:    detectFormat(r, filename),
		Data:      data,
	}
	if !h.send(w, r, cmd) {
		return
	}

	h.logger.Info("Graph imported",
		zap.String("sessionID", cmd.SessionID),
		zap.String("format", cmd.Format),
		zap.Int("bytes", len(data)),
	)
	h.respondView(w, r, cmd.SessionID, http.StatusOK)
}

// Generate handles POST /sessions/{sessionID}/generate
func (h *DocumentHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}
	cmd := &commands.GenerateGraphCommand{
		SessionID: sessionParam(r),
		Template:  req.Template,
		Params:    req.Params,
	}
	if !h.send(w, r, cmd) {
		return
	}
	h.respondView(w, r, cmd.SessionID, http.StatusOK)
}

// Save handles POST /sessions/{sessionID}/save
func (h *DocumentHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	cmd := &commands.SaveDocumentCommand{
		SessionID:   sessionParam(r),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	}
	if !h.send(w, r, cmd) {
		return
	}

	stored, err := querybus.Ask[ports.StoredDocument](r.Context(), h.queryBus, &queries.GetDocumentQuery{Name: cmd.Name})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, dto.DocumentSavedResponse{
		Document: stored.Meta,
		Message:  "Document saved",
	})
}

// Open handles POST /sessions/{sessionID}/open
func (h *DocumentHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenDocumentRequest
	if !h.decode(w, r, &req) {
		return
	}
	cmd := &commands.OpenDocumentCommand{SessionID: sessionParam(r), Name: req.Name}
	if !h.send(w, r, cmd) {
		return
	}
	h.respondView(w, r, cmd.SessionID, http.StatusOK)
}

// ListTemplates handles GET /templates
func (h *DocumentHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := querybus.Ask[[]ports.TemplateInfo](r.Context(), h.queryBus, &queries.ListTemplatesQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, templates)
}

// ListDocuments handles GET /documents?page=&page_size=&sort=&order=
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	params := common.ExtractPaginationParams(r)
	order := params.Order
	if r.URL.Query().Get("order") == "" {
		order = "asc"
	}

	result, err := querybus.Ask[*common.PaginatedResult](r.Context(), h.queryBus, &queries.ListDocumentsQuery{
		Page:     params.Page,
		PageSize: params.PageSize,
		SortBy:   params.Sort,
		Order:    order,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondWithMeta(w, r, http.StatusOK, result.Items, result.Pagination)
}

// GetDocument handles GET /documents/{name}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	stored, err := querybus.Ask[ports.StoredDocument](r.Context(), h.queryBus, &queries.GetDocumentQuery{
		Name: chi.URLParam(r, "name"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, stored)
}

// ListRevisions handles GET /documents/{name}/revisions
func (h *DocumentHandler) ListRevisions(w http.ResponseWriter, r *http.Request) {
	revisions, err := querybus.Ask[[]versioning.DocumentVersion](r.Context(), h.queryBus, &queries.ListRevisionsQuery{
		Name: chi.URLParam(r, "name"),
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, revisions)
}

// DeleteDocument handles DELETE /documents/{name}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if !h.send(w, r, &commands.DeleteDocumentCommand{Name: chi.URLParam(r, "name")}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readUpload(r *http.Request) ([]byte, string, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// detectFormat picks the document format from the query string, the file
// extension or the content type, in that order
func detectFormat(r *http.Request, filename string) string {
	if format := r.URL.Query().Get("format"); format != "" {
		return strings.ToLower(format)
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return string(ports.FormatYAML)
	case ".json":
		return string(ports.FormatJSON)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return string(ports.FormatYAML)
	}
	return string(ports.FormatJSON)
}
