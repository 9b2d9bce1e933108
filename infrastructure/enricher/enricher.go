// Package enricher turns a text generation provider into the review
// enrichment generator.
package enricher

import (
	"context"
	"log/slog"
	"strings"

	"github.com/helixml/bookshelf/domain/enrichment"
	"github.com/helixml/bookshelf/infrastructure/provider"
)

// ProviderEnricher sends a review to a TextGenerator and returns the raw
// model text. Shaping the text into a result is the Interpreter's job.
type ProviderEnricher struct {
	generator   provider.TextGenerator
	maxTokens   int
	temperature float64
	schema      provider.ResponseSchema
	log         *slog.Logger
}

// NewProviderEnricher creates a new ProviderEnricher. The generator is
// expected to carry the system instructions, see provider.NewInstructed.
func NewProviderEnricher(generator provider.TextGenerator, log *slog.Logger) *ProviderEnricher {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ProviderEnricher{
		generator:   generator,
		maxTokens:   1024,
		temperature: 0.2,
		schema:      PayloadSchema(),
		log:         log,
	}
}

// WithMaxTokens sets the maximum tokens for generation.
func (e *ProviderEnricher) WithMaxTokens(n int) *ProviderEnricher {
	e.maxTokens = n
	return e
}

// WithTemperature sets the temperature for generation.
func (e *ProviderEnricher) WithTemperature(t float64) *ProviderEnricher {
	e.temperature = t
	return e
}

// Generate makes one call with the review as the sole user message.
func (e *ProviderEnricher) Generate(ctx context.Context, reviewText string) (string, error) {
	chatReq := provider.NewChatCompletionRequest([]provider.Message{provider.UserMessage(reviewText)}).
		WithMaxTokens(e.maxTokens).
		WithTemperature(e.temperature).
		WithResponseSchema(e.schema)

	chatResp, err := e.generator.ChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}

	e.log.DebugContext(ctx, "text generation finished",
		slog.String("finish_reason", chatResp.FinishReason()),
		slog.Int("total_tokens", chatResp.Usage().TotalTokens()),
	)

	return strings.TrimSpace(cleanThinkingTags(chatResp.Content())), nil
}

// cleanThinkingTags removes any <think>...</think> blocks from model output.
// Some models (like Qwen) use these for chain-of-thought reasoning.
func cleanThinkingTags(text string) string {
	const open, closing = "<think>", "</think>"
	result := text
	for {
		start := strings.Index(result, open)
		if start == -1 {
			return result
		}
		end := strings.Index(result[start:], closing)
		if end == -1 {
			// Unclosed tag, just remove the opening tag
			result = result[:start] + result[start+len(open):]
			continue
		}
		result = result[:start] + result[start+end+len(closing):]
	}
}

var _ enrichment.Generator = (*ProviderEnricher)(nil)
