package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiProvider generates text through the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for Gemini provider.
type GeminiConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// NewGeminiProvider creates a provider from configuration.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = base
	}
	if cfg.Timeout > 0 || cfg.Transport != nil {
		cc.HTTPClient = &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name returns "gemini".
func (p *GeminiProvider) Name() string { return "gemini" }

// Close is a no-op for the Gemini provider.
func (p *GeminiProvider) Close() error {
	return nil
}

// ChatCompletion generates content with a single API call.
func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	system, messages := req.splitSystem()
	if len(messages) == 0 {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "no messages provided", nil)
	}

	contents := make([]*genai.Content, len(messages))
	for i, m := range messages {
		role := genai.Role(genai.RoleUser)
		if m.Role() == "assistant" {
			role = genai.RoleModel
		}
		contents[i] = genai.NewContentFromText(m.Content(), role)
	}

	config := &genai.GenerateContentConfig{CandidateCount: 1}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.MaxTokens() > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens())
	}
	if req.Temperature() > 0 {
		config.Temperature = genai.Ptr(float32(req.Temperature()))
	}
	if s := req.ResponseSchema(); !s.IsZero() {
		config.ResponseMIMEType = "application/json"
		config.ResponseJsonSchema = s.Schema()
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return ChatCompletionResponse{}, p.wrapError("chat_completion", err)
	}

	text := resp.Text()
	if text == "" {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "no candidates in response", ErrEmptyResponse)
	}

	var finishReason string
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		finishReason = string(resp.Candidates[0].FinishReason)
	}

	var usage Usage
	if m := resp.UsageMetadata; m != nil {
		usage = NewUsage(int(m.PromptTokenCount), int(m.CandidatesTokenCount), int(m.TotalTokenCount))
	}

	return NewChatCompletionResponse(text, finishReason, usage), nil
}

func (p *GeminiProvider) wrapError(operation string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return NewProviderError(operation, apiErr.Code, apiErr.Message, err)
	}
	return NewProviderError(operation, 0, "gemini request failed", err)
}

var _ Provider = (*GeminiProvider)(nil)
