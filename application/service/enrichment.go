package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/helixml/bookshelf/domain/enrichment"
)

// MaxEnrichmentAttempts bounds the calls made for one review.
const MaxEnrichmentAttempts = 3

// SleepFunc blocks for d. Tests replace it to avoid real waiting.
type SleepFunc func(ctx context.Context, d time.Duration)

// Backoff returns the wait after the given failed attempt: 2^attempt seconds.
func Backoff(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

func sleepTimer(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Enrichment runs the review enrichment loop: call the generator, interpret
// the reply, back off and retry on call failures, reject after the last one.
type Enrichment struct {
	generator   enrichment.Generator
	interpreter enrichment.Interpreter
	recorder    enrichment.Recorder
	sleep       SleepFunc
	logger      *slog.Logger
}

// EnrichmentOption configures an Enrichment service.
type EnrichmentOption func(*Enrichment)

// WithSleep replaces the backoff wait.
func WithSleep(fn SleepFunc) EnrichmentOption {
	return func(e *Enrichment) {
		if fn != nil {
			e.sleep = fn
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r enrichment.Recorder) EnrichmentOption {
	return func(e *Enrichment) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewEnrichment creates a new Enrichment service.
func NewEnrichment(
	generator enrichment.Generator,
	interpreter enrichment.Interpreter,
	logger *slog.Logger,
	opts ...EnrichmentOption,
) *Enrichment {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	e := &Enrichment{
		generator:   generator,
		interpreter: interpreter,
		recorder:    enrichment.NopRecorder{},
		sleep:       sleepTimer,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich derives summary, sentiment and tags for a validated review body.
// Cancellation of ctx is ignored; its values still reach the logs.
// After MaxEnrichmentAttempts call failures it returns an error matching
// enrichment.ErrServiceUnavailable.
func (e *Enrichment) Enrich(ctx context.Context, reviewText string) (enrichment.Result, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	defer func() { e.recorder.RecordDuration(time.Since(start)) }()

	attempts := make([]enrichment.Attempt, 0, MaxEnrichmentAttempts)
	var lastErr error

	for n := 1; n <= MaxEnrichmentAttempts; n++ {
		e.logger.InfoContext(ctx, fmt.Sprintf("AI processing attempt %d/%d for review", n, MaxEnrichmentAttempts),
			slog.Int("attempt", n),
		)

		raw, err := e.generator.Generate(ctx, reviewText)
		if err == nil {
			result, outcome := e.interpreter.Interpret(ctx, raw)
			e.recorder.RecordAttempt(outcome)
			e.logger.InfoContext(ctx, "AI processing completed successfully",
				slog.Int("attempt", n),
				slog.String("outcome", string(outcome)),
			)
			return result, nil
		}

		lastErr = err
		e.recorder.RecordAttempt(enrichment.OutcomeCallFailure)
		e.logger.ErrorContext(ctx, fmt.Sprintf("AI processing attempt %d/%d failed", n, MaxEnrichmentAttempts),
			slog.Int("attempt", n),
			slog.Any("error", err),
		)

		attempt := enrichment.Attempt{Index: n, Outcome: enrichment.OutcomeCallFailure}
		if n < MaxEnrichmentAttempts {
			attempt.Backoff = Backoff(n)
			e.sleep(ctx, attempt.Backoff)
		}
		attempts = append(attempts, attempt)
	}

	unavailable := enrichment.NewUnavailableError(MaxEnrichmentAttempts, lastErr)
	e.recorder.RecordRejection()
	e.logger.ErrorContext(ctx, "All AI processing attempts failed. Rejecting review creation.",
		slog.String("detail", unavailable.Detail()),
		slog.Any("attempts", attempts),
	)
	return enrichment.Result{}, unavailable
}
