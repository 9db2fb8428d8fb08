package di

import (
	"context"
	"fmt"
	"time"

	"grapheditor/application/commands/bus"
	commandhandlers "grapheditor/application/commands/handlers"
	"grapheditor/application/ports"
	"grapheditor/application/queries"
	querybus "grapheditor/application/queries/bus"
	queryhandlers "grapheditor/application/queries/handlers"
	"grapheditor/application/services"
	domainconfig "grapheditor/domain/config"
	"grapheditor/domain/core/validators"
	"grapheditor/domain/versioning"
	"grapheditor/infrastructure/codec"
	"grapheditor/infrastructure/config"
	"grapheditor/infrastructure/layout"
	"grapheditor/infrastructure/messaging"
	"grapheditor/infrastructure/messaging/eventbridge"
	"grapheditor/infrastructure/observability"
	"grapheditor/infrastructure/persistence/dynamodb"
	"grapheditor/infrastructure/persistence/memory"
	"grapheditor/infrastructure/templates"
	"grapheditor/interfaces/http/rest"
	"grapheditor/interfaces/http/rest/middleware"
	"grapheditor/interfaces/websocket"
	pkgerrors "grapheditor/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	metricsNamespace = "grapheditor"
	tracerName       = "grapheditor/commands"

	// templateCacheTTL is in seconds
	templateCacheTTL = 3600
	cacheSweep       = time.Minute
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
		}
		zcfg.Level = level
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("environment", string(cfg.Environment))), nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideDomainConfig derives the editing rules from the service config
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(metricsNamespace)
}

// ProvideMetrics exposes the collector as the editor metrics port
func ProvideMetrics(collector *observability.Collector) ports.Metrics {
	return collector
}

// ProvideSessionRepository creates the in-memory session store
func ProvideSessionRepository(cfg *config.Config, locker *memory.SessionLocker, logger *zap.Logger) *memory.SessionRepository {
	return memory.NewSessionRepository(cfg.SessionTTL, locker, logger)
}

// ProvideSessionLocker creates the per-session lock table
func ProvideSessionLocker() *memory.SessionLocker {
	return memory.NewSessionLocker()
}

// ProvideDocumentStore selects the document backend. AWS clients are only
// built when DynamoDB is configured.
func ProvideDocumentStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.DocumentStore, error) {
	switch cfg.DocumentStore {
	case config.DocumentStoreDynamoDB:
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		logger.Info("Using DynamoDB document store",
			zap.String("table", cfg.DocumentsTable),
			zap.String("index", cfg.DocumentsIndex),
		)
		return dynamodb.NewDocumentStore(ProvideDynamoDBClient(awsCfg), cfg.DocumentsTable, cfg.DocumentsIndex, logger), nil
	case config.DocumentStoreMemory, "":
		return memory.NewDocumentStore(), nil
	default:
		return nil, fmt.Errorf("unknown document store %q", cfg.DocumentStore)
	}
}

// ProvideEventPublisher selects where domain events go
func ProvideEventPublisher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.EventPublisher, error) {
	switch cfg.EventPublisher {
	case config.PublisherEventBridge:
		awsCfg, err := ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		logger.Info("Publishing events to EventBridge", zap.String("bus", cfg.EventBusName))
		return eventbridge.NewPublisher(ProvideEventBridgeClient(awsCfg), cfg.EventBusName, logger), nil
	case config.PublisherNone, "":
		return messaging.NewLogPublisher(logger), nil
	default:
		return nil, fmt.Errorf("unknown event publisher %q", cfg.EventPublisher)
	}
}

// ProvideHub creates the websocket hub
func ProvideHub(collector *observability.Collector, logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(collector, logger)
}

// ProvideNotifier pushes session views to connected clients
func ProvideNotifier(hub *websocket.Hub) ports.SessionNotifier {
	return hub
}

// ProvideLayout creates the layout engine for position-less graphs
func ProvideLayout(cfg *config.Config) ports.LayoutEngine {
	return layout.NewCircular(cfg.LayoutScale)
}

// ProvideTemplates creates the generator registry
func ProvideTemplates() ports.TemplateRegistry {
	return templates.NewRegistry()
}

// ProvideCodec creates the document codec
func ProvideCodec() ports.DocumentCodec {
	return codec.New()
}

// ProvideVersioning creates the document versioning service
func ProvideVersioning() *versioning.VersioningService {
	return versioning.NewVersioningService()
}

// ProvideElementValidator creates the attribute validator
func ProvideElementValidator(domainCfg *domainconfig.DomainConfig) *validators.ElementValidator {
	return validators.NewElementValidator(domainCfg)
}

// ProvideCanvasOps creates the canvas operations
func ProvideCanvasOps(domainCfg *domainconfig.DomainConfig, logger *zap.Logger) *services.CanvasOps {
	return services.NewCanvasOps(domainCfg, logger)
}

// ProvideAttributeEditor creates the attribute panel operations
func ProvideAttributeEditor(validator *validators.ElementValidator, logger *zap.Logger) *services.AttributeEditor {
	return services.NewAttributeEditor(validator, logger)
}

// ProvideEditorService creates the session editor
func ProvideEditorService(
	sessions *memory.SessionRepository,
	locker *memory.SessionLocker,
	publisher ports.EventPublisher,
	notifier ports.SessionNotifier,
	metrics ports.Metrics,
	canvas *services.CanvasOps,
	editor *services.AttributeEditor,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.EditorService {
	return services.NewEditorService(sessions, locker, publisher, notifier, metrics, canvas, editor, domainCfg, logger)
}

// ProvideGeneratorService creates the template generator service
func ProvideGeneratorService(
	registry ports.TemplateRegistry,
	engine ports.LayoutEngine,
	editor *services.EditorService,
	logger *zap.Logger,
) *services.GeneratorService {
	return services.NewGeneratorService(registry, engine, editor, logger)
}

// ProvideDocumentService creates the import, export and storage service
func ProvideDocumentService(
	documentCodec ports.DocumentCodec,
	store ports.DocumentStore,
	engine ports.LayoutEngine,
	versioningService *versioning.VersioningService,
	editor *services.EditorService,
	generator *services.GeneratorService,
	logger *zap.Logger,
) *services.DocumentService {
	return services.NewDocumentService(documentCodec, store, engine, versioningService, editor, generator, logger)
}

// ProvideInMemoryCache creates the query result cache
func ProvideInMemoryCache(ctx context.Context) *InMemoryCache {
	return NewInMemoryCache(ctx, cacheSweep)
}

// ProvideCommandBus creates the command bus with every handler registered
func ProvideCommandBus(
	editor *services.EditorService,
	documents *services.DocumentService,
	generator *services.GeneratorService,
	cfg *config.Config,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	middlewares := []bus.Middleware{bus.LoggingMiddleware(logger)}
	if cfg.EnableTracing {
		middlewares = append(middlewares, bus.TracingMiddleware(tracerName))
	}
	middlewares = append(middlewares, bus.ValidationMiddleware())

	commandBus := bus.NewCommandBus(middlewares...)

	if err := commandhandlers.NewEditorHandlers(editor, logger).Register(commandBus); err != nil {
		return nil, fmt.Errorf("failed to register editor handlers: %w", err)
	}
	if err := commandhandlers.NewDocumentHandlers(documents, generator, logger).Register(commandBus); err != nil {
		return nil, fmt.Errorf("failed to register document handlers: %w", err)
	}

	return commandBus, nil
}

// ProvideQueryBus creates the query bus with every handler registered
func ProvideQueryBus(
	editor *services.EditorService,
	documents *services.DocumentService,
	generator *services.GeneratorService,
	cache *InMemoryCache,
	collector *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger),
		querybus.MetricsMiddleware(collector),
	)

	if err := queryhandlers.NewQueryHandlers(editor, documents, generator, logger).Register(queryBus, cache, templateCacheTTL); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}

	return queryBus, nil
}

// ProvideErrorHandler creates the HTTP error handler. Stack traces are only
// exposed in development.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideSessionLookup resolves the view a websocket connection starts from
func ProvideSessionLookup(queryBus *querybus.QueryBus) websocket.SessionLookup {
	return func(ctx context.Context, sessionID string) (interface{}, error) {
		return querybus.Ask[*services.SessionView](ctx, queryBus, &queries.GetSessionViewQuery{SessionID: sessionID})
	}
}

// ProvideWebSocketServer creates the websocket endpoint
func ProvideWebSocketServer(
	hub *websocket.Hub,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	lookup websocket.SessionLookup,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *websocket.Server {
	dispatcher := websocket.NewBusDispatcher(commandBus, queryBus)
	return websocket.NewServer(hub, dispatcher, lookup, websocket.DefaultServerConfig(), errorHandler, logger)
}

// ProvideRateLimiter creates the per-client API limiter, or nil when disabled
func ProvideRateLimiter(ctx context.Context, cfg *config.Config) *middleware.RateLimiter {
	if cfg.RateLimit <= 0 {
		return nil
	}
	return middleware.NewRateLimiter(ctx, cfg.RateLimit, time.Minute)
}

// ProvideRouter builds the HTTP router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	collector *observability.Collector,
	wsServer *websocket.Server,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) *chi.Mux {
	options := rest.Options{EnableCORS: cfg.EnableCORS, RateLimiter: limiter}
	if cfg.EnableMetrics {
		options.Metrics = collector
	}
	// API Gateway does not hold websocket connections for a Lambda
	if !cfg.IsLambda {
		options.WebSocket = wsServer.HandleWebSocket
	}

	return rest.NewRouter(commandBus, queryBus, errorHandler, options, logger).Setup()
}
