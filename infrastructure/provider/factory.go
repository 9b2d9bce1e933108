package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/helixml/bookshelf/internal/config"
)

// FactoryOptions tune how New wires a provider.
type FactoryOptions struct {
	// CacheDir enables the on-disk response cache when set.
	CacheDir string
	// Logger receives circuit breaker state changes.
	Logger *slog.Logger
}

// New builds the provider described by endpoint, wrapped with the rate
// limiter and circuit breaker the endpoint asks for.
func New(ctx context.Context, endpoint config.Endpoint, opts FactoryOptions) (Provider, error) {
	var transport http.RoundTripper
	if opts.CacheDir != "" && endpoint.IsRemote() {
		ct, err := NewCachingTransport(opts.CacheDir, nil)
		if err != nil {
			return nil, err
		}
		transport = ct
	}

	var p Provider
	switch endpoint.Provider() {
	case config.ProviderOpenAI:
		p = NewOpenAIProvider(OpenAIConfig{
			APIKey:    endpoint.APIKey(),
			BaseURL:   endpoint.BaseURL(),
			Model:     endpoint.Model(),
			Timeout:   endpoint.Timeout(),
			Transport: transport,
		})
	case config.ProviderAnthropic:
		p = NewAnthropicProvider(AnthropicConfig{
			APIKey:    endpoint.APIKey(),
			BaseURL:   endpoint.BaseURL(),
			Model:     endpoint.Model(),
			Timeout:   endpoint.Timeout(),
			Transport: transport,
		})
	case config.ProviderGemini:
		g, err := NewGeminiProvider(ctx, GeminiConfig{
			APIKey:    endpoint.APIKey(),
			BaseURL:   endpoint.BaseURL(),
			Model:     endpoint.Model(),
			Timeout:   endpoint.Timeout(),
			Transport: transport,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		p = g
	case config.ProviderHeuristic:
		return NewHeuristicProvider(), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", endpoint.Provider())
	}

	p = NewRateLimited(p, endpoint.RequestsPerSecond())
	if endpoint.CircuitBreaker() {
		p = NewCircuitBreaker(p, BreakerConfig{
			FailureThreshold: config.DefaultBreakerFailures,
			OpenTimeout:      config.DefaultBreakerOpenTimeout,
		}, opts.Logger)
	}
	return p, nil
}
