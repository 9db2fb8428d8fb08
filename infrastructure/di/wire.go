//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"grapheditor/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideCollector,
	ProvideMetrics,
	ProvideSessionRepository,
	ProvideSessionLocker,
	ProvideDocumentStore,
	ProvideEventPublisher,
	ProvideHub,
	ProvideNotifier,
	ProvideLayout,
	ProvideTemplates,
	ProvideCodec,
	ProvideVersioning,
	ProvideElementValidator,
	ProvideCanvasOps,
	ProvideAttributeEditor,
	ProvideEditorService,
	ProvideGeneratorService,
	ProvideDocumentService,
	ProvideInMemoryCache,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideErrorHandler,
	ProvideSessionLookup,
	ProvideWebSocketServer,
	ProvideRateLimiter,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
