package provider

import "context"

// Instructed prepends a fixed system prompt to every request.
type Instructed struct {
	inner        Provider
	instructions string
}

// NewInstructed wraps inner so each request carries instructions as its
// first system message.
func NewInstructed(inner Provider, instructions string) *Instructed {
	return &Instructed{inner: inner, instructions: instructions}
}

// Name returns the wrapped provider's name.
func (i *Instructed) Name() string { return i.inner.Name() }

// Close closes the wrapped provider.
func (i *Instructed) Close() error { return i.inner.Close() }

// ChatCompletion adds the instructions and delegates.
func (i *Instructed) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	if i.instructions != "" {
		req = req.WithSystemMessage(i.instructions)
	}
	return i.inner.ChatCompletion(ctx, req)
}

var _ Provider = (*Instructed)(nil)
