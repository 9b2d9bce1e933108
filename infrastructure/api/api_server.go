package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"

	"github.com/helixml/bookshelf"
	apimiddleware "github.com/helixml/bookshelf/infrastructure/api/middleware"
	v1 "github.com/helixml/bookshelf/infrastructure/api/v1"
	"github.com/helixml/bookshelf/infrastructure/metrics"
	"github.com/helixml/bookshelf/internal/config"
	mcpinternal "github.com/helixml/bookshelf/internal/mcp"
)

// Option configures an APIServer.
type Option func(*APIServer)

// WithReviewRateLimit caps review submissions per client IP per minute.
// Zero or less disables the limit.
func WithReviewRateLimit(n int) Option {
	return func(a *APIServer) { a.reviewRateLimit = n }
}

// WithCORSOrigins sets the origins allowed to call /api/v1.
func WithCORSOrigins(origins []string) Option {
	return func(a *APIServer) { a.corsOrigins = origins }
}

// WithRequestTimeout sets the deadline for /api/v1 requests.
func WithRequestTimeout(d time.Duration) Option {
	return func(a *APIServer) { a.requestTimeout = d }
}

// APIServer provides an HTTP API backed by a bookshelf Client.
type APIServer struct {
	client          *bookshelf.Client
	reviewRateLimit int
	corsOrigins     []string
	requestTimeout  time.Duration
	server          *Server
	router          chi.Router
	routerCalled    bool
	logger          *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client. Review
// creation requires one of the client's API keys when any are configured;
// reads, search, MCP, docs and metrics stay open.
func NewAPIServer(client *bookshelf.Client, opts ...Option) *APIServer {
	a := &APIServer{
		client:          client,
		reviewRateLimit: config.DefaultReviewRateLimit,
		corsOrigins:     []string{config.DefaultCORSOrigins},
		requestTimeout:  config.DefaultRequestTimeout,
		logger:          client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up every route on the router.
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	booksRouter := v1.NewBooksRouter(c, a.reviewRateLimit)
	searchRouter := v1.NewSearchRouter(c)

	router.Get("/", a.info)
	router.Get("/health", a.health)
	router.Get("/healthz", a.healthz)
	router.Mount("/docs", a.DocsRouter("/docs/openapi.json").Routes())
	router.Handle("/metrics", metrics.Handler(c.Metrics()))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(apimiddleware.CORS(a.corsOrigins))
		r.Use(apimiddleware.CorrelationID)
		r.Use(apimiddleware.Logging(a.logger))
		r.Use(chimiddleware.Timeout(a.requestTimeout))

		r.Mount("/search", searchRouter.Routes())

		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.WriteProtectAuth(c.APIKeys()))
			r.Mount("/books", booksRouter.Routes())
		})
	})

	// MCP streams responses and tracks sessions through headers, which
	// chi's Timeout middleware breaks by wrapping the ResponseWriter.
	mcpSrv := mcpinternal.NewServer(c.Books, c.Search, bookshelf.Version, a.logger)
	router.Mount("/mcp", server.NewStreamableHTTPServer(mcpSrv.MCPServer()))
}

type infoResponse struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Provider string `json:"provider"`
	Docs     string `json:"docs"`
}

func (a *APIServer) info(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, infoResponse{
		Name:     "bookshelf",
		Version:  bookshelf.Version,
		Provider: a.client.ProviderName(),
		Docs:     "/docs",
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func (a *APIServer) health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

func (a *APIServer) healthz(w http.ResponseWriter, r *http.Request) {
	if err := a.client.Ping(r.Context()); err != nil {
		a.logger.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		apimiddleware.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
		return
	}
	apimiddleware.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy"})
}

// DocsRouter returns a router for Swagger UI and OpenAPI spec.
func (a *APIServer) DocsRouter(specURL string) *DocsRouter {
	return NewDocsRouter(specURL)
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
