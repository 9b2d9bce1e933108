// Package bookshelf provides a library for a book catalog whose reader
// reviews are enriched with a generated summary, sentiment score and tags.
//
// Basic usage:
//
//	client, err := bookshelf.New(
//	    bookshelf.WithSQLite("bookshelf.db"),
//	    bookshelf.WithEndpoint(config.NewEndpointWithOptions(
//	        config.WithProvider(config.ProviderOpenAI),
//	        config.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    )),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	books, err := client.Books.List(ctx)
//	review, err := client.Books.CreateReview(ctx, books[0].ID(), service.ReviewInput{
//	    ReviewerName: "Ada",
//	    Text:         "A wonderful, character-driven classic.",
//	    Rating:       5,
//	})
package bookshelf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/bookshelf/application/service"
	"github.com/helixml/bookshelf/domain/enrichment"
	"github.com/helixml/bookshelf/infrastructure/enricher"
	"github.com/helixml/bookshelf/infrastructure/metrics"
	"github.com/helixml/bookshelf/infrastructure/persistence"
	"github.com/helixml/bookshelf/infrastructure/provider"
	"github.com/helixml/bookshelf/internal/config"
	"github.com/helixml/bookshelf/internal/database"
	"github.com/helixml/bookshelf/internal/log"
)

// Client is the main entry point for the bookshelf library.
//
// Access resources via struct fields:
//
//	client.Books.List(ctx)
//	client.Books.CreateReview(ctx, id, input)
//	client.Search.Query(ctx, "gatsby")
type Client struct {
	Books      *service.Books
	Search     *service.Search
	Enrichment *service.Enrichment

	db       database.Database
	provider provider.Provider
	registry *prometheus.Registry
	closers  []io.Closer

	logger  *slog.Logger
	dataDir string
	apiKeys []string
	closed  atomic.Bool
	mu      sync.Mutex
}

// New creates a new Client with the given options. The schema is migrated
// and, unless disabled, the sample catalog is loaded into an empty database.
func New(opts ...Option) (*Client, error) {
	cfg := newClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.dbURL == "" {
		return nil, ErrNoDatabase
	}

	logger := cfg.logger
	if logger == nil {
		logger = log.Default().Slog()
	}

	dataDir, err := config.PrepareDataDir(cfg.dataDir)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	db, err := database.NewDatabase(ctx, cfg.dbURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := persistence.AutoMigrate(ctx, db); err != nil {
		errClose := db.Close()
		return nil, errors.Join(fmt.Errorf("auto migrate: %w", err), errClose)
	}

	textProvider := cfg.textProvider
	if textProvider == nil {
		textProvider, err = provider.New(ctx, cfg.endpoint, provider.FactoryOptions{
			CacheDir: cfg.httpCacheDir,
			Logger:   logger,
		})
		if err != nil {
			errClose := db.Close()
			return nil, errors.Join(fmt.Errorf("create text provider: %w", err), errClose)
		}
	}
	instructed := provider.NewInstructed(textProvider, enricher.Instructions)

	generator := enricher.NewProviderEnricher(instructed, logger).
		WithMaxTokens(cfg.endpoint.MaxTokens()).
		WithTemperature(cfg.endpoint.Temperature())
	interpreter := enrichment.NewInterpreter(
		enrichment.NewDefaultsWith(cfg.defaults.Summary(), cfg.defaults.SentimentScore(), cfg.defaults.Tags()),
		logger,
	)

	registry := cfg.registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}
	enrichmentOpts := []service.EnrichmentOption{
		service.WithRecorder(metrics.NewRecorder(registry)),
	}
	if cfg.sleep != nil {
		enrichmentOpts = append(enrichmentOpts, service.WithSleep(cfg.sleep))
	}
	enrichmentSvc := service.NewEnrichment(generator, interpreter, logger, enrichmentOpts...)

	bookStore := persistence.NewBookStore(db)
	reviewStore := persistence.NewReviewStore(db)
	transact := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return database.WithTransaction(ctx, db, fn)
	}

	client := &Client{
		Books:      service.NewBooks(bookStore, reviewStore, enrichmentSvc, transact, logger),
		Search:     service.NewSearch(bookStore, reviewStore, logger),
		Enrichment: enrichmentSvc,
		db:         db,
		provider:   instructed,
		registry:   registry,
		closers:    cfg.closers,
		logger:     logger,
		dataDir:    dataDir,
		apiKeys:    cfg.apiKeys,
	}

	if cfg.seed {
		if _, err := client.Seed(ctx); err != nil {
			errClose := client.Close()
			return nil, errors.Join(err, errClose)
		}
	}

	logger.Info("bookshelf client ready",
		slog.String("provider", textProvider.Name()),
		slog.String("data_dir", dataDir),
	)
	return client, nil
}

// Seed loads the built-in sample catalog when no books exist and reports
// how many books were added.
func (c *Client) Seed(ctx context.Context) (int, error) {
	if c.closed.Load() {
		return 0, ErrClientClosed
	}
	books, err := persistence.SampleCatalog()
	if err != nil {
		return 0, fmt.Errorf("load sample catalog: %w", err)
	}
	return c.Books.Seed(ctx, books)
}

// Ping checks the database connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	return c.db.Ping(ctx)
}

// Close releases the provider, registered closers and the database.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.provider.Close(); err != nil {
		c.logger.Error("failed to close text provider", slog.Any("error", err))
	}

	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			c.logger.Error("failed to close resource", slog.Any("error", err))
		}
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}

	c.logger.Info("bookshelf client closed")
	return nil
}

// Logger returns the client's logger.
func (c *Client) Logger() *slog.Logger {
	return c.logger
}

// Metrics returns the registry holding the enrichment metrics.
func (c *Client) Metrics() *prometheus.Registry {
	return c.registry
}

// APIKeys returns the keys that protect mutating API endpoints.
func (c *Client) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// ProviderName returns the name of the text-generation provider.
func (c *Client) ProviderName() string {
	return c.provider.Name()
}
