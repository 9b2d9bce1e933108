package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig configures a CircuitBreaker.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a trial call.
	OpenTimeout time.Duration
}

// CircuitBreaker fails fast once the wrapped generator keeps failing.
// Only transient errors count as failures.
type CircuitBreaker struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[ChatCompletionResponse]
}

// NewCircuitBreaker wraps inner with a circuit breaker.
func NewCircuitBreaker(inner Provider, cfg BreakerConfig, logger *slog.Logger) *CircuitBreaker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("text generation circuit breaker changed state",
				slog.String("provider", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &CircuitBreaker{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[ChatCompletionResponse](settings),
	}
}

// Name returns the wrapped provider's name.
func (c *CircuitBreaker) Name() string { return c.inner.Name() }

// Close closes the wrapped provider.
func (c *CircuitBreaker) Close() error { return c.inner.Close() }

// State returns the breaker state as a string.
func (c *CircuitBreaker) State() string { return c.cb.State().String() }

// ChatCompletion delegates through the breaker.
func (c *CircuitBreaker) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	resp, err := c.cb.Execute(func() (ChatCompletionResponse, error) {
		return c.inner.ChatCompletion(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ChatCompletionResponse{}, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	return resp, err
}

var _ Provider = (*CircuitBreaker)(nil)
