package rest

import (
	"net/http"

	"grapheditor/application/commands/bus"
	querybus "grapheditor/application/queries/bus"
	"grapheditor/interfaces/http/rest/dto"
	"grapheditor/interfaces/http/rest/handlers"
	"grapheditor/interfaces/http/rest/middleware"
	"grapheditor/pkg/common"
	pkgerrors "grapheditor/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// MetricsSource exposes request metrics and the scrape endpoint
type MetricsSource interface {
	middleware.HTTPMetrics
	Handler() http.Handler
}

// Options toggles optional router features
type Options struct {
	EnableCORS     bool
	AllowedOrigins []string
	// Metrics is nil when metrics are disabled
	Metrics MetricsSource
	// WebSocket serves GET /ws/{sessionID}; nil disables the route
	WebSocket http.HandlerFunc
	// RateLimiter guards /api; nil disables limiting
	RateLimiter *middleware.RateLimiter
}

// Router creates and configures the HTTP router
type Router struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	options      Options
	logger       *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	options Options,
	logger *zap.Logger,
) *Router {
	return &Router{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		options:      options,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errorHandler.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.options.Metrics != nil {
		router.Use(middleware.Metrics(rt.options.Metrics))
	}

	if rt.options.EnableCORS {
		origins := rt.options.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition", "Location"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.healthCheck)
	if rt.options.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.options.Metrics.Handler())
	}
	if rt.options.WebSocket != nil {
		router.Get("/ws/{sessionID}", rt.options.WebSocket)
	}

	sessionHandler := handlers.NewSessionHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)
	documentHandler := handlers.NewDocumentHandler(rt.commandBus, rt.queryBus, rt.errorHandler, rt.logger)

	router.Route("/api", func(r chi.Router) {
		if rt.options.RateLimiter != nil {
			r.Use(middleware.RateLimit(rt.options.RateLimiter, rt.errorHandler))
		}
		r.Use(chimiddleware.AllowContentType("application/json", "application/yaml", "application/x-yaml", "text/yaml", "text/plain", "multipart/form-data"))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessionHandler.CreateSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				sessionHandler.SessionRoutes(r)
				documentHandler.SessionRoutes(r)
			})
		})
		r.Route("/documents", documentHandler.DocumentRoutes)
		r.Get("/templates", documentHandler.ListTemplates)
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, dto.HealthResponse{Status: "healthy"})
}
