package di

import (
	"context"
	"testing"
	"time"

	"grapheditor/infrastructure/config"
	"grapheditor/infrastructure/messaging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Environment:    config.Development,
		LogLevel:       "error",
		HistoryLimit:   20,
		MaxElements:    100,
		SessionTTL:     time.Hour,
		LayoutScale:    100,
		DocumentStore:  config.DocumentStoreMemory,
		EventPublisher: config.PublisherNone,
	}
}

func TestInitializeContainer_Memory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := InitializeContainer(ctx, memoryConfig())
	require.NoError(t, err)

	assert.NotNil(t, container.Router)
	assert.NotNil(t, container.CommandBus)
	assert.NotNil(t, container.QueryBus)
	assert.Equal(t, 20, container.Editor.Limits().HistoryLimit)
	assert.Equal(t, 100, container.Editor.Limits().MaxElements)
}

func TestProvideLogger_InvalidLevel(t *testing.T) {
	cfg := memoryConfig()
	cfg.LogLevel = "loud"

	_, err := ProvideLogger(cfg)
	assert.Error(t, err)
}

func TestProvideBackends(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	logger, err := ProvideLogger(cfg)
	require.NoError(t, err)

	publisher, err := ProvideEventPublisher(ctx, cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &messaging.LogPublisher{}, publisher)

	cfg.DocumentStore = "floppy"
	_, err = ProvideDocumentStore(ctx, cfg, logger)
	assert.Error(t, err)

	cfg.EventPublisher = "pigeon"
	_, err = ProvideEventPublisher(ctx, cfg, logger)
	assert.Error(t, err)
}
