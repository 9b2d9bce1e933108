package provider

import (
	"context"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

var (
	positiveWords = []string{"good", "great", "excellent", "amazing", "love", "wonderful"}
	negativeWords = []string{"bad", "terrible", "awful", "hate", "disappointing"}

	keywordTags = []struct {
		keyword string
		tag     string
	}{
		{"character", "character-development"},
		{"plot", "plot"},
		{"writing", "writing-style"},
		{"recommend", "recommended"},
		{"classic", "classic"},
	}
)

// HeuristicProvider answers offline with keyword rules. It lets the server
// run without an AI endpoint and never fails.
type HeuristicProvider struct{}

// NewHeuristicProvider creates a HeuristicProvider.
func NewHeuristicProvider() *HeuristicProvider {
	return &HeuristicProvider{}
}

// Name returns "heuristic".
func (p *HeuristicProvider) Name() string { return "heuristic" }

// Close is a no-op.
func (p *HeuristicProvider) Close() error { return nil }

type heuristicPayload struct {
	Summary        string   `json:"summary"`
	SentimentScore float64  `json:"sentimentScore"`
	Tags           []string `json:"tags"`
}

// ChatCompletion analyses the last user message and returns a JSON payload.
func (p *HeuristicProvider) ChatCompletion(_ context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	var text string
	for _, m := range req.Messages() {
		if m.Role() == "user" {
			text = m.Content()
		}
	}

	body, err := json.Marshal(heuristicPayload{
		Summary:        heuristicSummary(text),
		SentimentScore: heuristicSentiment(text),
		Tags:           heuristicTags(text),
	})
	if err != nil {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "failed to marshal payload", err)
	}
	return NewChatCompletionResponse(string(body), "stop", NewUsage(0, 0, 0)), nil
}

func heuristicSummary(text string) string {
	words := len(strings.Fields(text))
	switch {
	case words > 50:
		return "Detailed review with comprehensive analysis"
	case words > 20:
		return "Thoughtful review with good insights"
	default:
		return "Brief but informative review"
	}
}

func heuristicSentiment(text string) float64 {
	lower := strings.ToLower(text)
	score := 0.5
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			score += 0.1
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			score -= 0.1
		}
	}
	score = math.Max(0, math.Min(1, score))
	return math.Round(score*100) / 100
}

func heuristicTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, kt := range keywordTags {
		if strings.Contains(lower, kt.keyword) {
			tags = append(tags, kt.tag)
		}
	}
	if len(tags) == 0 {
		return []string{"general"}
	}
	return tags
}

var _ Provider = (*HeuristicProvider)(nil)
