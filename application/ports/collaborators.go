package ports

import (
	"context"
	"time"

	"grapheditor/domain/core/valueobjects"
	"grapheditor/domain/document"
	"grapheditor/domain/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// SessionNotifier pushes updated views to the clients attached to a session
type SessionNotifier interface {
	NotifySession(sessionID string, message interface{})
}

// LayoutEngine computes node coordinates for graphs that have none
type LayoutEngine interface {
	Layout(nodeIDs []string, edges []valueobjects.EdgeKey) map[string]valueobjects.Position
}

// TemplateParam describes one generator parameter
type TemplateParam struct {
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Required bool        `json:"required"`
	Default  interface{} `json:"default,omitempty"`
	Help     string      `json:"help,omitempty"`
}

// TemplateInfo describes a registered generator
type TemplateInfo struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Params      []TemplateParam `json:"params"`
}

// TemplateRegistry produces raw graphs from named generators
type TemplateRegistry interface {
	List() []TemplateInfo
	Generate(name string, params map[string]interface{}) (document.RawGraph, error)
}

// Format is a document serialization format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DocumentCodec encodes and decodes documents
type DocumentCodec interface {
	// Encode serializes a document or an envelope
	Encode(format Format, v interface{}) ([]byte, error)
	// Decode returns either a document or the parameters of a generator
	// envelope. A hardcoded-loader envelope is unwrapped into its document.
	Decode(format Format, data []byte) (*document.Document, *document.GraphParams, error)
}

// Metrics records editor activity
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
	SetActiveSessions(n int)
	ObserveHistoryDepth(depth int)
	IncStaleReferences(n int)
}
