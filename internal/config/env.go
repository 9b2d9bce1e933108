package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Nested structs use underscore delimiter (e.g., ENRICHMENT_ENDPOINT_MODEL).
type EnvConfig struct {
	// Host is the server host to bind to.
	// Env: HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the server port to listen on.
	// Env: PORT (default: 3000)
	Port int `envconfig:"PORT" default:"3000"`

	// DataDir is the data directory path.
	// Env: DATA_DIR
	// Default: ~/.bookshelf
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the database connection URL.
	// Env: DB_URL
	// Default: sqlite:///{data_dir}/bookshelf.db
	DBURL string `envconfig:"DB_URL"`

	// DatabaseURL is accepted as an alias of DB_URL.
	// Env: DATABASE_URL
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// APIKeys is a comma-separated list of keys allowed to submit reviews.
	// Env: API_KEYS
	APIKeys string `envconfig:"API_KEYS"`

	// CORSAllowedOrigins is a comma-separated list of browser origins.
	// Env: CORS_ALLOWED_ORIGINS (default: *)
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// ReviewRateLimit is the number of review submissions per minute per IP.
	// Env: REVIEW_RATE_LIMIT (default: 20)
	ReviewRateLimit int `envconfig:"REVIEW_RATE_LIMIT" default:"20"`

	// SeedOnStart seeds the sample catalog when no books exist.
	// Env: SEED_ON_START (default: true)
	SeedOnStart bool `envconfig:"SEED_ON_START" default:"true"`

	// HTTPCacheDir is the directory for caching HTTP responses to disk.
	// When set, provider request/response pairs are replayed from disk.
	// Env: HTTP_CACHE_DIR
	HTTPCacheDir string `envconfig:"HTTP_CACHE_DIR"`

	// EnrichmentEndpoint configures the review enrichment AI service.
	EnrichmentEndpoint EndpointEnv `envconfig:"ENRICHMENT_ENDPOINT"`

	// EnrichmentDefault overrides the values used when a response omits a field.
	EnrichmentDefault DefaultsEnv `envconfig:"ENRICHMENT_DEFAULT"`
}

// EndpointEnv holds environment configuration for an AI endpoint.
type EndpointEnv struct {
	// Provider selects the backend: openai, anthropic, gemini or heuristic.
	// Env: *_PROVIDER (default: heuristic)
	Provider string `envconfig:"PROVIDER" default:"heuristic"`

	// BaseURL is the base URL for the endpoint.
	// Env: *_BASE_URL
	BaseURL string `envconfig:"BASE_URL"`

	// Model is the model identifier (e.g., gemini-2.5-flash-lite).
	// Env: *_MODEL
	Model string `envconfig:"MODEL"`

	// APIKey is the API key for authentication.
	// Env: *_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Timeout is the per-call timeout in seconds.
	// Env: *_TIMEOUT (default: 60)
	Timeout float64 `envconfig:"TIMEOUT" default:"60"`

	// MaxTokens is the maximum token limit.
	// Env: *_MAX_TOKENS (default: 1024)
	MaxTokens int `envconfig:"MAX_TOKENS" default:"1024"`

	// Temperature is the sampling temperature.
	// Env: *_TEMPERATURE (default: 0.2)
	Temperature float64 `envconfig:"TEMPERATURE" default:"0.2"`

	// RequestsPerSecond limits outbound calls. Zero disables limiting.
	// Env: *_REQUESTS_PER_SECOND (default: 0)
	RequestsPerSecond float64 `envconfig:"REQUESTS_PER_SECOND" default:"0"`

	// CircuitBreaker fails calls fast after repeated failures.
	// Env: *_CIRCUIT_BREAKER (default: false)
	CircuitBreaker bool `envconfig:"CIRCUIT_BREAKER" default:"false"`
}

// DefaultsEnv holds overrides for enrichment fallback values.
type DefaultsEnv struct {
	// Summary replaces "Review analysis unavailable".
	// Env: ENRICHMENT_DEFAULT_SUMMARY
	Summary string `envconfig:"SUMMARY"`

	// Score replaces the 0.5 sentiment score.
	// Env: ENRICHMENT_DEFAULT_SCORE
	Score *float64 `envconfig:"SCORE"`

	// Tags is a comma-separated replacement for the "review" tag.
	// Env: ENRICHMENT_DEFAULT_TAGS
	Tags string `envconfig:"TAGS"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
// For example, prefix "BOOKSHELF" would require BOOKSHELF_PORT instead of PORT.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.Host != "" {
		cfg = applyOption(cfg, WithHost(e.Host))
	}
	if e.Port != 0 {
		cfg = applyOption(cfg, WithPort(e.Port))
	}
	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	switch {
	case e.DBURL != "":
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	case e.DatabaseURL != "":
		cfg = applyOption(cfg, WithDBURL(e.DatabaseURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.APIKeys != "" {
		cfg = applyOption(cfg, WithAPIKeys(ParseList(e.APIKeys)))
	}
	cfg = applyOption(cfg, WithCORSOrigins(ParseList(e.CORSAllowedOrigins)))
	cfg = applyOption(cfg, WithReviewRateLimit(e.ReviewRateLimit))
	cfg = applyOption(cfg, WithSeedOnStart(e.SeedOnStart))
	if e.HTTPCacheDir != "" {
		cfg = applyOption(cfg, WithHTTPCacheDir(e.HTTPCacheDir))
	}

	cfg = applyOption(cfg, WithEnrichmentEndpoint(e.EnrichmentEndpoint.ToEndpoint()))
	cfg = applyOption(cfg, WithEnrichmentDefaults(e.EnrichmentDefault.ToDefaults()))

	return cfg
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// ToEndpoint converts EndpointEnv to Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithProvider(ParseProvider(e.Provider)),
		WithTimeout(time.Duration(e.Timeout * float64(time.Second))),
		WithMaxTokens(e.MaxTokens),
		WithTemperature(e.Temperature),
		WithRequestsPerSecond(e.RequestsPerSecond),
		WithCircuitBreaker(e.CircuitBreaker),
	}

	if e.BaseURL != "" {
		opts = append(opts, WithBaseURL(e.BaseURL))
	}
	if e.Model != "" {
		opts = append(opts, WithModel(e.Model))
	}
	if e.APIKey != "" {
		opts = append(opts, WithAPIKey(e.APIKey))
	}

	return NewEndpointWithOptions(opts...)
}

// ToDefaults converts DefaultsEnv to EnrichmentDefaults.
func (d DefaultsEnv) ToDefaults() EnrichmentDefaults {
	defaults := NewEnrichmentDefaults().
		WithSummary(d.Summary).
		WithTags(ParseList(d.Tags))
	if d.Score != nil {
		defaults = defaults.WithSentimentScore(*d.Score)
	}
	return defaults
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
