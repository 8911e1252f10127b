package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/upstart-engine/pkg/config"
)

// NewClientFromConfig builds the configured provider client behind a circuit breaker.
// Without an API key for Anthropic the server still starts, and every call
// fails with an auth error so the fallback paths stay reachable.
func NewClientFromConfig(cfg config.LLMConfig, logger *zap.Logger) (LLMClient, error) {
	clientCfg := &Config{
		Endpoint:  cfg.Endpoint,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		MaxTokens: cfg.MaxTokens,
	}

	var (
		client LLMClient
		err    error
	)
	switch cfg.Provider {
	case "anthropic":
		if cfg.APIKey == "" {
			logger.Warn("No LLM API key configured; analysis requests will fail")
			client = &unconfiguredClient{model: cfg.Model, endpoint: cfg.Endpoint}
			break
		}
		client, err = NewAnthropicClient(clientCfg, logger)
	case "openai":
		client, err = NewOpenAIClient(clientCfg, logger)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	breaker := NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:  cfg.CircuitThreshold,
		ResetAfter: cfg.CircuitResetAfter,
	})
	return NewGuardedClient(client, breaker, logger), nil
}

type unconfiguredClient struct {
	model    string
	endpoint string
}

func (c *unconfiguredClient) GenerateResponse(context.Context, string, GenerateOptions) (*GenerateResponseResult, error) {
	return nil, NewError(ErrorTypeAuth, "LLM API key is not configured", false, nil)
}

func (c *unconfiguredClient) GetModel() string    { return c.model }
func (c *unconfiguredClient) GetEndpoint() string { return c.endpoint }
