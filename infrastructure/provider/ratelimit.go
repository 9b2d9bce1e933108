package provider

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited throttles calls to the wrapped generator on the client side.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps inner with a limiter allowing rps calls per second.
// A non-positive rps returns inner unchanged.
func NewRateLimited(inner Provider, rps float64) Provider {
	if rps <= 0 {
		return inner
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the wrapped provider's name.
func (r *RateLimited) Name() string { return r.inner.Name() }

// Close closes the wrapped provider.
func (r *RateLimited) Close() error { return r.inner.Close() }

// ChatCompletion waits for a token and then delegates.
func (r *RateLimited) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return ChatCompletionResponse{}, fmt.Errorf("%w: %w", ErrRateLimited, err)
	}
	return r.inner.ChatCompletion(ctx, req)
}

var _ Provider = (*RateLimited)(nil)
