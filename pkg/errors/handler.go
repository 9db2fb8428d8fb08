package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed HTTP request
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
}

// ErrorHandler turns errors into JSON responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler. In debug mode stack traces
// and raw error messages are included in responses.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Handle writes the response for err
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	appErr := classify(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}

	response := h.newResponse(r, appErr.Type, appErr.Message)
	response.Code = appErr.Code
	response.Details = appErr.Details

	if h.debug {
		if appErr.StackTrace != "" {
			response.Details = withDetail(response.Details, "stack_trace", appErr.StackTrace)
		}
		if appErr.Cause != nil {
			response.Details = withDetail(response.Details, "cause", appErr.Cause.Error())
		}
	}

	h.logError(r, appErr, status)
	h.sendJSON(w, status, response)
}

// HandleStatus writes an error response for a bare status code
func (h *ErrorHandler) HandleStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.logger.Warn("HTTP error",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("message", message),
	)

	h.sendJSON(w, status, h.newResponse(r, statusToErrorType(status), message))
}

// classify maps any error onto an AppError. Errors raised outside the
// application keep a generic message so internals do not leak.
func classify(err error) *AppError {
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return &AppError{
			Type:       ErrorTypeValidation,
			Message:    fmt.Sprintf("request body exceeds %d bytes", maxBytes.Limit),
			Code:       "BODY_TOO_LARGE",
			Cause:      err,
			HTTPStatus: http.StatusRequestEntityTooLarge,
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &AppError{
			Type:       ErrorTypeTimeout,
			Message:    "the operation timed out",
			Cause:      err,
			HTTPStatus: http.StatusGatewayTimeout,
		}
	}
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    "An internal error occurred",
		Cause:      err,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func (h *ErrorHandler) newResponse(r *http.Request, errType ErrorType, message string) ErrorResponse {
	response := ErrorResponse{
		Error:     true,
		Type:      string(errType),
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	}
	if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
		response.TraceID = sc.TraceID().String()
	}
	return response
}

func withDetail(details map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out[key] = value
	return out
}

// logError logs at Error for server faults and Warn for client mistakes
func (h *ErrorHandler) logError(r *http.Request, err *AppError, status int) {
	fields := []zap.Field{
		zap.String("error_type", string(err.Type)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}
	if err.Code != "" {
		fields = append(fields, zap.String("error_code", err.Code))
	}
	if err.Cause != nil {
		fields = append(fields, zap.NamedError("cause", err.Cause))
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(err.Message, fields...)
		return
	}
	h.logger.Warn(err.Message, fields...)
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

func statusToErrorType(status int) ErrorType {
	switch status {
	case http.StatusBadRequest, http.StatusMethodNotAllowed, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		return ErrorTypeValidation
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrorTypeTimeout
	case http.StatusServiceUnavailable:
		return ErrorTypeUnavailable
	case http.StatusBadGateway:
		return ErrorTypeExternal
	default:
		return ErrorTypeInternal
	}
}

// Middleware turns panics in later handlers into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
