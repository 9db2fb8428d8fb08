package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"SERVER_ADDRESS", "ENVIRONMENT", "LOG_LEVEL", "HISTORY_LIMIT", "MAX_ELEMENTS",
		"SESSION_TTL", "LAYOUT_SCALE", "DOCUMENT_STORE", "AWS_REGION", "DOCUMENTS_TABLE", "DOCUMENTS_INDEX",
		"EVENT_PUBLISHER", "EVENT_BUS_NAME", "OTLP_ENDPOINT", "TRACE_SAMPLE_RATE",
		"AWS_LAMBDA_FUNCTION_NAME", "CONFIG_FILE", "DYNAMIC_CONFIG_FILE",
		"ENABLE_METRICS", "ENABLE_TRACING", "ENABLE_CORS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, Development, cfg.Environment)
	assert.Equal(t, DocumentStoreMemory, cfg.DocumentStore)
	assert.Equal(t, "EntityIndex", cfg.DocumentsIndex)
	assert.Equal(t, PublisherNone, cfg.EventPublisher)
	assert.Equal(t, 0, cfg.HistoryLimit)
	assert.Equal(t, 100000, cfg.MaxElements)
	assert.Equal(t, 500.0, cfg.LayoutScale)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsLambda)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HISTORY_LIMIT", "25")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("DOCUMENT_STORE", "dynamodb")
	t.Setenv("DOCUMENTS_TABLE", "graph-documents")
	t.Setenv("ENABLE_CORS", "false")
	t.Setenv("MAX_ELEMENTS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, 2000, cfg.MaxElements, "unparseable values fall back to the default")
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "graph-documents", cfg.DocumentsTable)
	assert.False(t, cfg.EnableCORS)
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: 7\nlayout_scale: 250\nsession_ttl: 3h\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("MAX_ELEMENTS", "42")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.HistoryLimit)
	assert.Equal(t, 250.0, cfg.LayoutScale)
	assert.Equal(t, 3*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 42, cfg.MaxElements)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerAddress:  ":8080",
			Environment:    Development,
			SessionTTL:     time.Hour,
			LayoutScale:    500,
			DocumentStore:  DocumentStoreMemory,
			EventPublisher: PublisherNone,
			SampleRate:     1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown environment", mutate: func(c *Config) { c.Environment = "qa" }, wantErr: "ENVIRONMENT"},
		{name: "dynamodb without table", mutate: func(c *Config) { c.DocumentStore = DocumentStoreDynamoDB; c.AWSRegion = "us-west-2" }, wantErr: "DOCUMENTS_TABLE"},
		{name: "unknown store", mutate: func(c *Config) { c.DocumentStore = "redis" }, wantErr: "DOCUMENT_STORE"},
		{name: "eventbridge without bus", mutate: func(c *Config) { c.EventPublisher = PublisherEventBridge }, wantErr: "EVENT_BUS_NAME"},
		{name: "negative history", mutate: func(c *Config) { c.HistoryLimit = -1 }, wantErr: "HISTORY_LIMIT"},
		{name: "zero ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: "SESSION_TTL"},
		{name: "tracing without endpoint", mutate: func(c *Config) { c.EnableTracing = true }, wantErr: "OTLP_ENDPOINT"},
		{name: "lambda needs no address", mutate: func(c *Config) { c.ServerAddress = ""; c.IsLambda = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_DomainConfig(t *testing.T) {
	cfg := &Config{
		Environment:  Production,
		HistoryLimit: 3,
		MaxElements:  10,
		SessionTTL:   time.Minute,
		LayoutScale:  100,
	}

	dc := cfg.DomainConfig()
	assert.Equal(t, 3, dc.HistoryLimit)
	assert.Equal(t, 10, dc.MaxElements)
	assert.Equal(t, time.Minute, dc.SessionTTL)
	assert.Equal(t, 100.0, dc.LayoutScale)
	assert.True(t, dc.AllowSelfLoops)
}

func TestLoadLimits(t *testing.T) {
	dir := t.TempDir()
	base := Limits{HistoryLimit: 10, MaxElements: 100}

	tests := []struct {
		name    string
		content string
		want    Limits
		wantErr bool
	}{
		{name: "json", content: `{"history_limit": 5}`, want: Limits{HistoryLimit: 5, MaxElements: 100}},
		{name: "yaml", content: "max_elements: 50\n", want: Limits{HistoryLimit: 10, MaxElements: 50}},
		{name: "negative", content: "history_limit: -2\n", want: base, wantErr: true},
		{name: "garbage", content: "{{{", want: base, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			got, err := LoadLimits(path, base)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLimitsWatcher_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_limit: 4\n"), 0o600))

	w, err := NewLimitsWatcher(path, Limits{HistoryLimit: 1, MaxElements: 9}, zap.NewNop())
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, Limits{HistoryLimit: 4, MaxElements: 9}, w.Current())

	var mu sync.Mutex
	var seen []Limits
	w.OnChange(func(l Limits) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, l)
	})

	require.NoError(t, os.WriteFile(path, []byte("history_limit: 4\nmax_elements: 20\n"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) > 0
	}, 5*time.Second, 50*time.Millisecond)

	mu.Lock()
	assert.Equal(t, Limits{HistoryLimit: 4, MaxElements: 20}, seen[len(seen)-1])
	mu.Unlock()
	assert.Equal(t, Limits{HistoryLimit: 4, MaxElements: 20}, w.Current())
}

func TestNewLimitsWatcher_RequiresPath(t *testing.T) {
	_, err := NewLimitsWatcher("", Limits{}, zap.NewNop())
	assert.Error(t, err)
}
