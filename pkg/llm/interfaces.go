// Package llm provides chat completion clients for Anthropic and
// OpenAI-compatible providers.
package llm

import (
	"context"
)

// GenerateOptions tunes a single completion request.
type GenerateOptions struct {
	System      string
	Temperature *float64 // nil uses the provider default
	MaxTokens   int      // 0 uses the client default
}

// Temperature returns a pointer for GenerateOptions.Temperature.
func Temperature(t float64) *float64 {
	return &t
}

// GenerateResponseResult is the completion text plus token usage.
type GenerateResponseResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// LLMClient defines the interface for LLM operations.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse sends one user prompt and returns the text reply.
	GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetEndpoint returns the configured endpoint.
	GetEndpoint() string
}

var (
	_ LLMClient = (*OpenAIClient)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
	_ LLMClient = (*GuardedClient)(nil)
)
