package handlers

import (
	"context"

	"go.uber.org/zap"

	"grapheditor/application/commands"
	"grapheditor/application/commands/bus"
	"grapheditor/application/ports"
	"grapheditor/application/services"
	"grapheditor/domain/session"
)

// DocumentHandlers handles import, generation and stored documents
type DocumentHandlers struct {
	documents *services.DocumentService
	generator *services.GeneratorService
	logger    *zap.Logger
}

// NewDocumentHandlers creates the document command handlers
func NewDocumentHandlers(documents *services.DocumentService, generator *services.GeneratorService, logger *zap.Logger) *DocumentHandlers {
	return &DocumentHandlers{documents: documents, generator: generator, logger: logger}
}

// Register adds every document command to the bus
func (h *DocumentHandlers) Register(b *bus.CommandBus) error {
	if err := b.Register(&commands.ImportGraphCommand{}, bus.Typed(h.HandleImportGraph)); err != nil {
		return err
	}
	if err := b.Register(&commands.GenerateGraphCommand{}, bus.Typed(h.HandleGenerateGraph)); err != nil {
		return err
	}
	if err := b.Register(&commands.SaveDocumentCommand{}, bus.Typed(h.HandleSaveDocument)); err != nil {
		return err
	}
	if err := b.Register(&commands.OpenDocumentCommand{}, bus.Typed(h.HandleOpenDocument)); err != nil {
		return err
	}
	return b.Register(&commands.DeleteDocumentCommand{}, bus.Typed(h.HandleDeleteDocument))
}

// HandleImportGraph loads an uploaded document
func (h *DocumentHandlers) HandleImportGraph(ctx context.Context, cmd *commands.ImportGraphCommand) error {
	_, err := h.documents.Import(ctx, session.ID(cmd.SessionID), ports.Format(cmd.Format), cmd.Data)
	return err
}

// HandleGenerateGraph runs a template
func (h *DocumentHandlers) HandleGenerateGraph(ctx context.Context, cmd *commands.GenerateGraphCommand) error {
	_, err := h.generator.Generate(ctx, session.ID(cmd.SessionID), cmd.Template, cmd.Params)
	return err
}

// HandleSaveDocument stores the session graph
func (h *DocumentHandlers) HandleSaveDocument(ctx context.Context, cmd *commands.SaveDocumentCommand) error {
	meta, err := h.documents.Save(ctx, session.ID(cmd.SessionID), cmd.Name, cmd.Description)
	if err != nil {
		return err
	}
	h.logger.Debug("Document revision stored", zap.String("document", meta.Name), zap.Int("version", meta.Version))
	return nil
}

// HandleOpenDocument loads a stored document
func (h *DocumentHandlers) HandleOpenDocument(ctx context.Context, cmd *commands.OpenDocumentCommand) error {
	_, err := h.documents.Open(ctx, session.ID(cmd.SessionID), cmd.Name)
	return err
}

// HandleDeleteDocument removes a stored document
func (h *DocumentHandlers) HandleDeleteDocument(ctx context.Context, cmd *commands.DeleteDocumentCommand) error {
	return h.documents.Delete(ctx, cmd.Name)
}
