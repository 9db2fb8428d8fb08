package services

import (
	"context"

	"go.uber.org/zap"

	"grapheditor/application/ports"
	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/document"
	"grapheditor/domain/session"
	pkgerrors "grapheditor/pkg/errors"
)

// GeneratorService fills a session with a graph produced by a named template
type GeneratorService struct {
	registry ports.TemplateRegistry
	layout   ports.LayoutEngine
	editor   *EditorService
	logger   *zap.Logger
}

// NewGeneratorService creates a new generator service
func NewGeneratorService(
	registry ports.TemplateRegistry,
	layout ports.LayoutEngine,
	editor *EditorService,
	logger *zap.Logger,
) *GeneratorService {
	return &GeneratorService{
		registry: registry,
		layout:   layout,
		editor:   editor,
		logger:   logger,
	}
}

// Templates lists the registered generators
func (s *GeneratorService) Templates() []ports.TemplateInfo {
	return s.registry.List()
}

// Generate runs a template, lays out its nodes and loads the result
func (s *GeneratorService) Generate(ctx context.Context, id session.ID, name string, params map[string]interface{}) (*SessionView, error) {
	raw, err := s.registry.Generate(name, params)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "template %s", name)
	}

	s.logger.Debug("Template generated",
		zap.String("sessionID", id.String()),
		zap.String("template", name),
		zap.Int("nodes", len(raw.Nodes)),
		zap.Int("edges", len(raw.Edges)),
	)
	return s.editor.LoadRaw(ctx, id, raw, LayoutPositions(s.layout, raw), "template:"+name)
}

// LayoutPositions computes coordinates when some node of raw has none
func LayoutPositions(engine ports.LayoutEngine, raw document.RawGraph) map[string]valueobjects.Position {
	if engine == nil || !raw.NeedsLayout() {
		return nil
	}
	ids := make([]string, 0, len(raw.Nodes))
	for _, n := range raw.Nodes {
		ids = append(ids, n.ID)
	}
	edges := make([]valueobjects.EdgeKey, 0, len(raw.Edges))
	for _, e := range raw.Edges {
		edges = append(edges, valueobjects.NewEdgeKey(e.Source, e.Target))
	}
	return engine.Layout(ids, edges)
}
