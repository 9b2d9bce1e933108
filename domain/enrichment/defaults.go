package enrichment

import "strings"

// Stock fallback values.
const (
	DefaultSummary        = "Review analysis unavailable"
	DefaultSentimentScore = 0.5
	DefaultTag            = "review"
)

// Defaults holds the values substituted for missing or unusable fields of a
// generated response. The zero value is not valid; use NewDefaults.
type Defaults struct {
	summary        string
	sentimentScore float64
	tags           []string
}

// NewDefaults returns the stock fallback values.
func NewDefaults() Defaults {
	return Defaults{
		summary:        DefaultSummary,
		sentimentScore: DefaultSentimentScore,
		tags:           []string{DefaultTag},
	}
}

// NewDefaultsWith builds Defaults from custom values, keeping the stock
// value for any field that would break the Result invariants.
func NewDefaultsWith(summary string, sentimentScore float64, tags []string) Defaults {
	d := NewDefaults()
	if summary = strings.TrimSpace(summary); summary != "" {
		d.summary = summary
	}
	if sentimentScore >= 0 && sentimentScore <= 1 {
		d.sentimentScore = sentimentScore
	}
	if cleaned := cleanTags(tags); len(cleaned) > 0 {
		d.tags = cleaned
	}
	return d
}

// Summary returns the fallback summary.
func (d Defaults) Summary() string { return d.summary }

// SentimentScore returns the fallback sentiment score.
func (d Defaults) SentimentScore() float64 { return d.sentimentScore }

// Tags returns a copy of the fallback tags.
func (d Defaults) Tags() []string {
	tags := make([]string, len(d.tags))
	copy(tags, d.tags)
	return tags
}
