package bookshelf

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/bookshelf/application/service"
	"github.com/helixml/bookshelf/infrastructure/provider"
	"github.com/helixml/bookshelf/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL        string
	dataDir      string
	endpoint     config.Endpoint
	defaults     config.EnrichmentDefaults
	textProvider provider.Provider
	httpCacheDir string
	seed         bool
	sleep        service.SleepFunc
	registry     *prometheus.Registry
	logger       *slog.Logger
	apiKeys      []string
	closers      []io.Closer
}

func newClientConfig() *clientConfig {
	return &clientConfig{
		dataDir:  config.DefaultDataDir(),
		endpoint: config.NewEndpoint(),
		defaults: config.NewEnrichmentDefaults(),
		seed:     true,
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig applies an AppConfig: database, data directory, enrichment
// endpoint and defaults, API keys, seeding and the provider HTTP cache.
// Later options override it.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dbURL = cfg.DBURL()
		c.dataDir = cfg.DataDir()
		c.endpoint = cfg.EnrichmentEndpoint()
		c.defaults = cfg.EnrichmentDefaults()
		c.apiKeys = cfg.APIKeys()
		c.seed = cfg.SeedOnStart()
		c.httpCacheDir = cfg.HTTPCacheDir()
	}
}

// WithSQLite stores data in the SQLite file at path. ":memory:" keeps
// everything in memory.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores data in PostgreSQL.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDatabaseURL selects the database by URL (sqlite:/// or postgres://).
func WithDatabaseURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) Option {
	return func(c *clientConfig) {
		c.dataDir = dir
	}
}

// WithEndpoint selects the text-generation endpoint used for enrichment.
func WithEndpoint(e config.Endpoint) Option {
	return func(c *clientConfig) {
		c.endpoint = e
	}
}

// WithTextProvider uses p for enrichment instead of building one from the
// endpoint. The endpoint's generation limits still apply.
func WithTextProvider(p provider.Provider) Option {
	return func(c *clientConfig) {
		c.textProvider = p
	}
}

// WithEnrichmentDefaults sets the values substituted for unusable fields
// of a generated response.
func WithEnrichmentDefaults(d config.EnrichmentDefaults) Option {
	return func(c *clientConfig) {
		c.defaults = d
	}
}

// WithHTTPCacheDir caches provider responses on disk.
func WithHTTPCacheDir(dir string) Option {
	return func(c *clientConfig) {
		c.httpCacheDir = dir
	}
}

// WithSeed controls whether the sample catalog is loaded into an empty database.
func WithSeed(seed bool) Option {
	return func(c *clientConfig) {
		c.seed = seed
	}
}

// WithSleep replaces the wait between enrichment attempts.
func WithSleep(fn service.SleepFunc) Option {
	return func(c *clientConfig) {
		c.sleep = fn
	}
}

// WithMetricsRegistry registers enrichment metrics with reg.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(c *clientConfig) {
		c.registry = reg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithAPIKeys sets the keys that protect mutating API endpoints.
func WithAPIKeys(keys ...string) Option {
	return func(c *clientConfig) {
		c.apiKeys = append(c.apiKeys, keys...)
	}
}

// WithCloser registers a resource closed with the Client.
func WithCloser(closer io.Closer) Option {
	return func(c *clientConfig) {
		c.closers = append(c.closers, closer)
	}
}
