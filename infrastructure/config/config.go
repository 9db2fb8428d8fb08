package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	domainconfig "grapheditor/domain/config"

	"gopkg.in/yaml.v3"
)

// Environment names a deployment profile
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Document store backends
const (
	DocumentStoreMemory   = "memory"
	DocumentStoreDynamoDB = "dynamodb"
)

// Event publisher backends
const (
	PublisherNone        = "none"
	PublisherEventBridge = "eventbridge"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string      `yaml:"server_address"`
	Environment   Environment `yaml:"environment"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Editing limits
	HistoryLimit int           `yaml:"history_limit"`
	MaxElements  int           `yaml:"max_elements"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	LayoutScale  float64       `yaml:"layout_scale"`

	// Storage and messaging
	DocumentStore  string `yaml:"document_store"`
	AWSRegion      string `yaml:"aws_region"`
	DocumentsTable string `yaml:"documents_table"`
	DocumentsIndex string `yaml:"documents_index"`
	EventPublisher string `yaml:"event_publisher"`
	EventBusName   string `yaml:"event_bus_name"`

	// RateLimit is requests per minute and client on /api; 0 disables it
	RateLimit int `yaml:"rate_limit"`

	// Observability
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`

	// Lambda
	IsLambda bool `yaml:"-"`

	// Files
	ConfigFile        string `yaml:"-"`
	DynamicConfigFile string `yaml:"dynamic_config_file"`

	// Feature flags
	EnableMetrics bool `yaml:"enable_metrics"`
	EnableTracing bool `yaml:"enable_tracing"`
	EnableCORS    bool `yaml:"enable_cors"`
}

// LoadConfig loads configuration from environment variables, then applies
// the YAML file named by CONFIG_FILE when set.
func LoadConfig() (*Config, error) {
	env := Environment(getEnv("ENVIRONMENT", string(Development)))
	defaults := defaultsFor(env)

	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   env,
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		HistoryLimit: getEnvInt("HISTORY_LIMIT", defaults.HistoryLimit),
		MaxElements:  getEnvInt("MAX_ELEMENTS", defaults.MaxElements),
		SessionTTL:   getEnvDuration("SESSION_TTL", defaults.SessionTTL),
		LayoutScale:  getEnvFloat("LAYOUT_SCALE", defaults.LayoutScale),

		DocumentStore:  getEnv("DOCUMENT_STORE", DocumentStoreMemory),
		AWSRegion:      getEnv("AWS_REGION", "us-west-2"),
		DocumentsTable: getEnv("DOCUMENTS_TABLE", ""),
		DocumentsIndex: getEnv("DOCUMENTS_INDEX", "EntityIndex"),
		EventPublisher: getEnv("EVENT_PUBLISHER", PublisherNone),
		EventBusName:   getEnv("EVENT_BUS_NAME", ""),

		RateLimit: getEnvInt("RATE_LIMIT", 600),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", "localhost:4317"),
		SampleRate:   getEnvFloat("TRACE_SAMPLE_RATE", 1.0),

		IsLambda: getEnv("AWS_LAMBDA_FUNCTION_NAME", "") != "",

		ConfigFile:        getEnv("CONFIG_FILE", ""),
		DynamicConfigFile: getEnv("DYNAMIC_CONFIG_FILE", ""),

		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	if cfg.ConfigFile != "" {
		if err := cfg.applyFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFile overlays the values present in a YAML file. Keys missing from
// the file keep their current value.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate ensures all required configuration is present
func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("unknown ENVIRONMENT %q", c.Environment)
	}

	if c.ServerAddress == "" && !c.IsLambda {
		return fmt.Errorf("SERVER_ADDRESS is required")
	}

	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative")
	}
	if c.MaxElements < 0 {
		return fmt.Errorf("MAX_ELEMENTS must not be negative")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.LayoutScale <= 0 {
		return fmt.Errorf("LAYOUT_SCALE must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RATE_LIMIT must not be negative")
	}

	switch c.DocumentStore {
	case DocumentStoreMemory:
	case DocumentStoreDynamoDB:
		if c.DocumentsTable == "" {
			return fmt.Errorf("DOCUMENTS_TABLE is required when DOCUMENT_STORE is %s", DocumentStoreDynamoDB)
		}
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required when DOCUMENT_STORE is %s", DocumentStoreDynamoDB)
		}
	default:
		return fmt.Errorf("unknown DOCUMENT_STORE %q", c.DocumentStore)
	}

	switch c.EventPublisher {
	case PublisherNone:
	case PublisherEventBridge:
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required when EVENT_PUBLISHER is %s", PublisherEventBridge)
		}
	default:
		return fmt.Errorf("unknown EVENT_PUBLISHER %q", c.EventPublisher)
	}

	if c.EnableTracing && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP_ENDPOINT is required when tracing is enabled")
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("TRACE_SAMPLE_RATE must be between 0 and 1")
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == Development
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}

// DomainConfig builds the editing rules for the configured environment,
// with the limits from this config applied on top.
func (c *Config) DomainConfig() *domainconfig.DomainConfig {
	dc := defaultsFor(c.Environment)
	dc.HistoryLimit = c.HistoryLimit
	dc.MaxElements = c.MaxElements
	dc.SessionTTL = c.SessionTTL
	dc.LayoutScale = c.LayoutScale
	return dc
}

func defaultsFor(env Environment) *domainconfig.DomainConfig {
	switch env {
	case Production:
		return domainconfig.ProductionDomainConfig()
	case Development:
		return domainconfig.DevelopmentDomainConfig()
	}
	return domainconfig.DefaultDomainConfig()
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}
