// Package enrichment provides the domain types for AI-derived review metadata:
// the summary, sentiment score and tags attached to every stored review.
package enrichment

import (
	"math"
	"strings"
)

// Result is the enrichment derived from a review body.
// A Result returned by this package always has a non-empty summary,
// a sentiment score in [0,1] and at least one tag.
type Result struct {
	summary        string
	sentimentScore float64
	tags           []string
}

// NewResult creates a Result, substituting defaults for any value that would
// break the Result invariants. Scores outside [0,1] are clamped.
func NewResult(summary string, sentimentScore float64, tags []string, defaults Defaults) Result {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		summary = defaults.Summary()
	}

	cleaned := cleanTags(tags)
	if len(cleaned) == 0 {
		cleaned = defaults.Tags()
	}

	return Result{
		summary:        summary,
		sentimentScore: ClampScore(sentimentScore),
		tags:           cleaned,
	}
}

// DefaultResult returns the Result made entirely of defaults.
func DefaultResult(defaults Defaults) Result {
	return Result{
		summary:        defaults.Summary(),
		sentimentScore: defaults.SentimentScore(),
		tags:           defaults.Tags(),
	}
}

// Summary returns the short summary of the review.
func (r Result) Summary() string { return r.summary }

// SentimentScore returns the sentiment, 0 very negative to 1 very positive.
func (r Result) SentimentScore() float64 { return r.sentimentScore }

// Tags returns a copy of the tags.
func (r Result) Tags() []string {
	tags := make([]string, len(r.tags))
	copy(tags, r.tags)
	return tags
}

// ClampScore bounds a score to [0,1]. NaN maps to 0.
func ClampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(1, score))
}

func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		cleaned = append(cleaned, tag)
	}
	return cleaned
}
