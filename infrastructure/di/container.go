package di

import (
	"context"
	"fmt"

	"grapheditor/application/commands/bus"
	querybus "grapheditor/application/queries/bus"
	"grapheditor/application/services"
	"grapheditor/infrastructure/config"
	"grapheditor/infrastructure/observability"
	"grapheditor/infrastructure/persistence/memory"
	"grapheditor/interfaces/websocket"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Sessions   *memory.SessionRepository
	Editor     *services.EditorService
	Documents  *services.DocumentService
	Generator  *services.GeneratorService
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Cache      *InMemoryCache
	Metrics    *observability.Collector
	Hub        *websocket.Hub
	Router     *chi.Mux
}

// Start runs the background loops: the websocket hub and the session
// janitor. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) {
	go c.Hub.Run(ctx)
	go c.Sessions.RunJanitor(ctx, c.Config.SessionTTL/4)
}

// WatchLimits applies the dynamic limits file to the editor and keeps
// following it. It returns nil when no file is configured.
func (c *Container) WatchLimits() (*config.LimitsWatcher, error) {
	if c.Config.DynamicConfigFile == "" {
		return nil, nil
	}

	initial := config.Limits{HistoryLimit: c.Config.HistoryLimit, MaxElements: c.Config.MaxElements}
	watcher, err := config.NewLimitsWatcher(c.Config.DynamicConfigFile, initial, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to watch limits: %w", err)
	}

	c.Editor.UpdateLimits(services.Limits(watcher.Current()))
	watcher.OnChange(func(l config.Limits) {
		c.Editor.UpdateLimits(services.Limits(l))
	})
	return watcher, nil
}

// InitTracing installs the OpenTelemetry provider described by the config
func (c *Container) InitTracing(ctx context.Context) (func(context.Context) error, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     c.Config.EnableTracing,
		ServiceName: metricsNamespace,
		Environment: string(c.Config.Environment),
		Endpoint:    c.Config.OTLPEndpoint,
		SampleRate:  c.Config.SampleRate,
	}, c.Logger)
}
