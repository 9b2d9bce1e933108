// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultHost               = "0.0.0.0"
	DefaultPort               = 3000
	DefaultLogLevel           = "INFO"
	DefaultDatabaseFile       = "bookshelf.db"
	DefaultCORSOrigins        = "*"
	DefaultReviewRateLimit    = 20
	DefaultProvider           = ProviderHeuristic
	DefaultEndpointTimeout    = 60 * time.Second
	DefaultEndpointMaxTokens  = 1024
	DefaultEndpointTemp       = 0.2
	DefaultSummary            = "Review analysis unavailable"
	DefaultSentimentScore     = 0.5
	DefaultTag                = "review"
	DefaultRequestTimeout     = 90 * time.Second
	DefaultShutdownTimeout    = 30 * time.Second
	DefaultBreakerFailures    = 5
	DefaultBreakerOpenTimeout = 30 * time.Second
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// Provider names the text-generation backend used for review enrichment.
type Provider string

// Provider values.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderHeuristic Provider = "heuristic"
)

// ParseProvider parses a provider name, falling back to the heuristic provider.
func ParseProvider(s string) Provider {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderAnthropic:
		return ProviderAnthropic
	case ProviderGemini:
		return ProviderGemini
	default:
		return ProviderHeuristic
	}
}

// Endpoint configures the text-generation service that enriches reviews.
type Endpoint struct {
	provider          Provider
	baseURL           string
	model             string
	apiKey            string
	timeout           time.Duration
	maxTokens         int
	temperature       float64
	requestsPerSecond float64
	circuitBreaker    bool
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		provider:    DefaultProvider,
		timeout:     DefaultEndpointTimeout,
		maxTokens:   DefaultEndpointMaxTokens,
		temperature: DefaultEndpointTemp,
	}
}

// Provider returns the provider backing the endpoint.
func (e Endpoint) Provider() Provider { return e.provider }

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// Model returns the model identifier.
func (e Endpoint) Model() string { return e.model }

// APIKey returns the API key.
func (e Endpoint) APIKey() string { return e.apiKey }

// Timeout returns the per-call timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxTokens returns the generation token limit.
func (e Endpoint) MaxTokens() int { return e.maxTokens }

// Temperature returns the sampling temperature.
func (e Endpoint) Temperature() float64 { return e.temperature }

// RequestsPerSecond returns the client-side rate limit. Zero disables it.
func (e Endpoint) RequestsPerSecond() float64 { return e.requestsPerSecond }

// CircuitBreaker reports whether calls fail fast after repeated failures.
func (e Endpoint) CircuitBreaker() bool { return e.circuitBreaker }

// IsRemote reports whether the endpoint calls a hosted model.
func (e Endpoint) IsRemote() bool {
	return e.provider != ProviderHeuristic
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithProvider sets the provider.
func WithProvider(p Provider) EndpointOption {
	return func(e *Endpoint) { e.provider = p }
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithModel sets the model.
func WithModel(model string) EndpointOption {
	return func(e *Endpoint) { e.model = model }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxTokens sets the generation token limit.
func WithMaxTokens(n int) EndpointOption {
	return func(e *Endpoint) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) EndpointOption {
	return func(e *Endpoint) { e.temperature = t }
}

// WithRequestsPerSecond sets the client-side rate limit.
func WithRequestsPerSecond(rps float64) EndpointOption {
	return func(e *Endpoint) { e.requestsPerSecond = rps }
}

// WithCircuitBreaker enables or disables the circuit breaker.
func WithCircuitBreaker(enabled bool) EndpointOption {
	return func(e *Endpoint) { e.circuitBreaker = enabled }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// EnrichmentDefaults holds the values substituted when a generated
// response is missing a field.
type EnrichmentDefaults struct {
	summary        string
	sentimentScore float64
	tags           []string
}

// NewEnrichmentDefaults creates EnrichmentDefaults with the stock values.
func NewEnrichmentDefaults() EnrichmentDefaults {
	return EnrichmentDefaults{
		summary:        DefaultSummary,
		sentimentScore: DefaultSentimentScore,
		tags:           []string{DefaultTag},
	}
}

// Summary returns the default summary.
func (d EnrichmentDefaults) Summary() string { return d.summary }

// SentimentScore returns the default sentiment score.
func (d EnrichmentDefaults) SentimentScore() float64 { return d.sentimentScore }

// Tags returns a copy of the default tags.
func (d EnrichmentDefaults) Tags() []string {
	tags := make([]string, len(d.tags))
	copy(tags, d.tags)
	return tags
}

// WithSummary returns a copy with the given summary, ignoring blank values.
func (d EnrichmentDefaults) WithSummary(s string) EnrichmentDefaults {
	if strings.TrimSpace(s) != "" {
		d.summary = s
	}
	return d
}

// WithSentimentScore returns a copy with the given score, ignoring values outside [0,1].
func (d EnrichmentDefaults) WithSentimentScore(score float64) EnrichmentDefaults {
	if score >= 0 && score <= 1 {
		d.sentimentScore = score
	}
	return d
}

// WithTags returns a copy with the given tags, ignoring an empty list.
func (d EnrichmentDefaults) WithTags(tags []string) EnrichmentDefaults {
	if len(tags) > 0 {
		d.tags = make([]string, len(tags))
		copy(d.tags, tags)
	}
	return d
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	host               string
	port               int
	dataDir            string
	dbURL              string
	logLevel           string
	logFormat          LogFormat
	apiKeys            []string
	corsOrigins        []string
	reviewRateLimit    int
	seedOnStart        bool
	httpCacheDir       string
	enrichmentEndpoint Endpoint
	enrichmentDefaults EnrichmentDefaults
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bookshelf"
	}
	return filepath.Join(home, ".bookshelf")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	dataDir := DefaultDataDir()
	return AppConfig{
		host:               DefaultHost,
		port:               DefaultPort,
		dataDir:            dataDir,
		dbURL:              "sqlite:///" + filepath.Join(dataDir, DefaultDatabaseFile),
		logLevel:           DefaultLogLevel,
		logFormat:          LogFormatPretty,
		apiKeys:            []string{},
		corsOrigins:        []string{DefaultCORSOrigins},
		reviewRateLimit:    DefaultReviewRateLimit,
		seedOnStart:        true,
		enrichmentEndpoint: NewEndpoint(),
		enrichmentDefaults: NewEnrichmentDefaults(),
	}
}

// Host returns the server host to bind to.
func (c AppConfig) Host() string { return c.host }

// Port returns the server port to listen on.
func (c AppConfig) Port() int { return c.port }

// Addr returns the combined host:port address.
func (c AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.host, c.port)
}

// DataDir returns the data directory path.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// APIKeys returns the keys that authorise write requests.
func (c AppConfig) APIKeys() []string {
	keys := make([]string, len(c.apiKeys))
	copy(keys, c.apiKeys)
	return keys
}

// CORSOrigins returns the origins allowed to call the API from a browser.
func (c AppConfig) CORSOrigins() []string {
	origins := make([]string, len(c.corsOrigins))
	copy(origins, c.corsOrigins)
	return origins
}

// ReviewRateLimit returns review submissions allowed per minute per client IP.
func (c AppConfig) ReviewRateLimit() int { return c.reviewRateLimit }

// SeedOnStart reports whether sample books are seeded into an empty catalog.
func (c AppConfig) SeedOnStart() bool { return c.seedOnStart }

// HTTPCacheDir returns the directory for caching provider responses.
func (c AppConfig) HTTPCacheDir() string { return c.httpCacheDir }

// EnrichmentEndpoint returns the enrichment endpoint config.
func (c AppConfig) EnrichmentEndpoint() Endpoint { return c.enrichmentEndpoint }

// EnrichmentDefaults returns the fallback values for enrichment results.
func (c AppConfig) EnrichmentDefaults() EnrichmentDefaults { return c.enrichmentDefaults }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	return os.MkdirAll(c.dataDir, 0o755)
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithHost sets the server host.
func WithHost(host string) AppConfigOption {
	return func(c *AppConfig) { c.host = host }
}

// WithPort sets the server port.
func WithPort(port int) AppConfigOption {
	return func(c *AppConfig) { c.port = port }
}

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
		// Keep the default database inside the data directory
		if c.dbURL == "" || strings.HasSuffix(c.dbURL, DefaultDatabaseFile) {
			c.dbURL = "sqlite:///" + filepath.Join(dir, DefaultDatabaseFile)
		}
	}
}

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithAPIKeys sets the API keys.
func WithAPIKeys(keys []string) AppConfigOption {
	return func(c *AppConfig) {
		c.apiKeys = make([]string, len(keys))
		copy(c.apiKeys, keys)
	}
}

// WithCORSOrigins sets the allowed CORS origins.
func WithCORSOrigins(origins []string) AppConfigOption {
	return func(c *AppConfig) {
		if len(origins) == 0 {
			return
		}
		c.corsOrigins = make([]string, len(origins))
		copy(c.corsOrigins, origins)
	}
}

// WithReviewRateLimit sets the per-IP review submission limit. Zero disables it.
func WithReviewRateLimit(n int) AppConfigOption {
	return func(c *AppConfig) {
		if n >= 0 {
			c.reviewRateLimit = n
		}
	}
}

// WithSeedOnStart toggles catalog seeding at startup.
func WithSeedOnStart(seed bool) AppConfigOption {
	return func(c *AppConfig) { c.seedOnStart = seed }
}

// WithHTTPCacheDir sets the provider response cache directory.
func WithHTTPCacheDir(dir string) AppConfigOption {
	return func(c *AppConfig) { c.httpCacheDir = dir }
}

// WithEnrichmentEndpoint sets the enrichment endpoint.
func WithEnrichmentEndpoint(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.enrichmentEndpoint = e }
}

// WithEnrichmentDefaults sets the enrichment fallback values.
func WithEnrichmentDefaults(d EnrichmentDefaults) AppConfigOption {
	return func(c *AppConfig) { c.enrichmentDefaults = d }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Secrets are masked or shown as counts.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("addr", c.Addr()),
		slog.String("data_dir", c.dataDir),
		slog.String("log_level", c.logLevel),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("enrichment_provider", string(c.enrichmentEndpoint.Provider())),
		slog.String("enrichment_base_url", c.enrichmentEndpoint.BaseURL()),
		slog.String("enrichment_model", c.enrichmentEndpoint.Model()),
		slog.Int("api_keys_count", len(c.apiKeys)),
		slog.Int("review_rate_limit", c.reviewRateLimit),
		slog.Bool("seed_on_start", c.seedOnStart),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}

// ParseList parses a comma-separated string, dropping blank entries.
func ParseList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
