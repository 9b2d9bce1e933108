package enrichment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Response field names.
const (
	fieldSummary        = "summary"
	fieldSentimentScore = "sentimentScore"
	fieldTags           = "tags"
)

// ErrNotObject is reported when the response parses as JSON but is not an object.
var ErrNotObject = errors.New("response is not a JSON object")

// Interpreter turns raw generated text into a Result. It never fails:
// unusable input degrades to defaults, field by field where possible.
type Interpreter struct {
	defaults Defaults
	logger   *slog.Logger
}

// NewInterpreter creates an Interpreter. A zero Defaults selects the stock values.
func NewInterpreter(defaults Defaults, logger *slog.Logger) Interpreter {
	if defaults.summary == "" || len(defaults.tags) == 0 {
		defaults = NewDefaults()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return Interpreter{defaults: defaults, logger: logger}
}

// Defaults returns the fallback values used by the interpreter.
func (i Interpreter) Defaults() Defaults { return i.defaults }

// Interpret converts raw generated text to a Result and reports whether the
// text parsed (OutcomeSuccess) or fell back entirely to defaults
// (OutcomeParseFailure).
func (i Interpreter) Interpret(ctx context.Context, raw string) (Result, Outcome) {
	fields, err := decodeObject(StripFences(raw))
	if err != nil {
		i.logger.ErrorContext(ctx, "Failed to parse AI response as JSON, using fallback values",
			slog.Any("error", err),
			slog.Int("response_length", len(raw)),
		)
		return DefaultResult(i.defaults), OutcomeParseFailure
	}

	return Result{
		summary:        i.summary(fields[fieldSummary]),
		sentimentScore: i.sentimentScore(fields[fieldSentimentScore]),
		tags:           i.tags(fields[fieldTags]),
	}, OutcomeSuccess
}

// StripFences removes a leading ```json (or bare ```) fence and a trailing
// ``` fence from trimmed text. Text without fences is returned trimmed.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "```json"):
		text = text[len("```json"):]
	case strings.HasPrefix(text, "```"):
		text = text[len("```"):]
	default:
		return text
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func decodeObject(text string) (map[string]json.RawMessage, error) {
	if text == "" {
		return nil, errors.New("empty response")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		var v any
		if json.Unmarshal([]byte(text), &v) == nil {
			return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
		}
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: got null", ErrNotObject)
	}
	return fields, nil
}

func (i Interpreter) summary(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return i.defaults.Summary()
	}
	if s = strings.TrimSpace(s); s == "" {
		return i.defaults.Summary()
	}
	return s
}

// sentimentScore treats zero like an absent value.
func (i Interpreter) sentimentScore(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return i.defaults.SentimentScore()
	}

	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return i.defaults.SentimentScore()
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return i.defaults.SentimentScore()
		}
		score = parsed
	}

	if score == 0 {
		return i.defaults.SentimentScore()
	}
	return ClampScore(score)
}

func (i Interpreter) tags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return i.defaults.Tags()
	}

	var items []any
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if json.Unmarshal(raw, &single) != nil {
			return i.defaults.Tags()
		}
		items = []any{single}
	}

	candidates := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			candidates = append(candidates, s)
		}
	}
	if tags := cleanTags(candidates); len(tags) > 0 {
		return tags
	}
	return i.defaults.Tags()
}
