package config

import "time"

// DomainConfig holds all configurable editing rules and limits
type DomainConfig struct {
	// Graph constraints
	MaxElements int

	// History
	HistoryLimit int

	// Attribute constraints
	MaxAttributeNameLength int
	MaxTextValueLength     int
	MaxLabelLength         int

	// Layout applied to imported or generated graphs without positions
	LayoutScale float64

	// Time constraints
	SessionTTL time.Duration

	// Validation settings
	AllowSelfLoops bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxElements:            5000,
		HistoryLimit:           200,
		MaxAttributeNameLength: 128,
		MaxTextValueLength:     10000,
		MaxLabelLength:         256,
		LayoutScale:            500,
		SessionTTL:             24 * time.Hour,
		AllowSelfLoops:         true,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// tighter limits for shared deployments
	config.MaxElements = 2000
	config.HistoryLimit = 100
	config.SessionTTL = 2 * time.Hour

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxElements = 100000
	config.HistoryLimit = 0
	return config
}
