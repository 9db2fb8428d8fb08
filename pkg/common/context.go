package common

import (
	"context"
	"time"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeySessionID    ContextKey = "session_id"
	ContextKeyRequestID    ContextKey = "request_id"
	ContextKeyConnectionID ContextKey = "connection_id"
	ContextKeyStartTime    ContextKey = "start_time"
)

// WithSessionID adds the editing session ID to context
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ContextKeySessionID, sessionID)
}

// GetSessionID extracts the editing session ID from context
func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(ContextKeySessionID).(string)
	return sessionID, ok
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok
}

// WithConnectionID adds the websocket connection ID to context
func WithConnectionID(ctx context.Context, connectionID string) context.Context {
	return context.WithValue(ctx, ContextKeyConnectionID, connectionID)
}

// GetConnectionID extracts the websocket connection ID from context
func GetConnectionID(ctx context.Context) (string, bool) {
	connectionID, ok := ctx.Value(ContextKeyConnectionID).(string)
	return connectionID, ok
}

// WithStartTime adds start time to context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetStartTime extracts start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time)
	return startTime, ok
}

// GetElapsedTime calculates elapsed time from start time in context
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := GetStartTime(ctx); ok {
		return time.Since(startTime)
	}
	return 0
}

// EnrichContext adds common metadata to context
func EnrichContext(ctx context.Context, sessionID, requestID string) context.Context {
	ctx = WithSessionID(ctx, sessionID)
	ctx = WithRequestID(ctx, requestID)
	ctx = WithStartTime(ctx, time.Now())
	return ctx
}

// ContextMetadata contains all context metadata
type ContextMetadata struct {
	SessionID    string        `json:"session_id,omitempty"`
	RequestID    string        `json:"request_id,omitempty"`
	ConnectionID string        `json:"connection_id,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
}

// ExtractMetadata extracts all metadata from context
func ExtractMetadata(ctx context.Context) ContextMetadata {
	meta := ContextMetadata{}

	if sessionID, ok := GetSessionID(ctx); ok {
		meta.SessionID = sessionID
	}
	if requestID, ok := GetRequestID(ctx); ok {
		meta.RequestID = requestID
	}
	if connectionID, ok := GetConnectionID(ctx); ok {
		meta.ConnectionID = connectionID
	}
	meta.Duration = GetElapsedTime(ctx)

	return meta
}
