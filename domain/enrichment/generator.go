package enrichment

import (
	"context"
	"log/slog"
	"time"
)

// Generator produces raw model text for a review body.
// Implementations make exactly one upstream call per invocation.
type Generator interface {
	Generate(ctx context.Context, reviewText string) (string, error)
}

// Outcome classifies a single generation attempt.
type Outcome string

// Outcome values.
const (
	OutcomeSuccess      Outcome = "success"
	OutcomeParseFailure Outcome = "parse_failure"
	OutcomeCallFailure  Outcome = "call_failure"
)

// Recorder observes attempts, terminal rejections and end-to-end duration.
type Recorder interface {
	RecordAttempt(outcome Outcome)
	RecordRejection()
	RecordDuration(d time.Duration)
}

// NopRecorder discards observations.
type NopRecorder struct{}

// RecordAttempt does nothing.
func (NopRecorder) RecordAttempt(Outcome) {}

// RecordRejection does nothing.
func (NopRecorder) RecordRejection() {}

// RecordDuration does nothing.
func (NopRecorder) RecordDuration(time.Duration) {}

// Attempt records one pass of the enrichment loop. It lives only as long
// as the loop that produced it.
type Attempt struct {
	Index   int
	Outcome Outcome
	Backoff time.Duration
}

// LogValue renders the attempt for structured logs.
func (a Attempt) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("index", a.Index),
		slog.String("outcome", string(a.Outcome)),
		slog.Duration("backoff", a.Backoff),
	)
}
