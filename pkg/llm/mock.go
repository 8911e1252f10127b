package llm

import (
	"context"
	"sync"
)

// MockLLMClient is a configurable mock for testing LLM functionality.
// Set the function fields to control behavior in tests.
type MockLLMClient struct {
	// GenerateResponseFunc is called when GenerateResponse is invoked.
	// If nil, Responses are returned in order, then an empty result.
	GenerateResponseFunc func(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error)

	// Responses are canned reply texts consumed one per call.
	Responses []string

	Model    string
	Endpoint string

	mu                    sync.Mutex
	GenerateResponseCalls int
	Prompts               []string
	Options               []GenerateOptions
}

// NewMockLLMClient creates a new mock with sensible defaults.
func NewMockLLMClient(responses ...string) *MockLLMClient {
	return &MockLLMClient{
		Model:     "mock-model",
		Endpoint:  "http://mock-endpoint",
		Responses: responses,
	}
}

// GenerateResponse implements LLMClient.
func (m *MockLLMClient) GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error) {
	m.mu.Lock()
	idx := m.GenerateResponseCalls
	m.GenerateResponseCalls++
	m.Prompts = append(m.Prompts, prompt)
	m.Options = append(m.Options, opts)
	m.mu.Unlock()

	if m.GenerateResponseFunc != nil {
		return m.GenerateResponseFunc(ctx, prompt, opts)
	}
	if idx < len(m.Responses) {
		return &GenerateResponseResult{Content: m.Responses[idx]}, nil
	}
	return &GenerateResponseResult{}, nil
}

// Calls returns the number of GenerateResponse calls so far.
func (m *MockLLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.GenerateResponseCalls
}

// GetModel implements LLMClient.
func (m *MockLLMClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}

// GetEndpoint implements LLMClient.
func (m *MockLLMClient) GetEndpoint() string {
	if m.Endpoint == "" {
		return "http://mock-endpoint"
	}
	return m.Endpoint
}

// Reset clears call tracking.
func (m *MockLLMClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateResponseCalls = 0
	m.Prompts = nil
	m.Options = nil
}

var _ LLMClient = (*MockLLMClient)(nil)
