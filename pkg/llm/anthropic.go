package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// DefaultAnthropicEndpoint is the public Messages API base.
const DefaultAnthropicEndpoint = "https://api.anthropic.com/v1"

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	config Config
	logger *zap.Logger
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	config := *cfg
	if config.Endpoint == "" {
		config.Endpoint = DefaultAnthropicEndpoint
	}

	client := anthropic.NewClient(cfg.APIKey,
		anthropic.WithBaseURL(strings.TrimSuffix(config.Endpoint, "/")))

	return &AnthropicClient{
		client: client,
		config: config,
		logger: logger.Named("llm").With(zap.String("provider", "anthropic")),
	}, nil
}

// GenerateResponse sends a single user message and concatenates the text blocks of the reply.
func (c *AnthropicClient) GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: c.config.maxTokens(opts.MaxTokens),
		System:    opts.System,
		Messages: []anthropic.Message{
			{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					{Type: "text", Text: &prompt},
				},
			},
		},
	}
	if opts.Temperature != nil {
		t := float32(*opts.Temperature)
		req.Temperature = &t
	}

	c.logger.Debug("LLM request",
		zap.String("model", c.config.Model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("max_tokens", req.MaxTokens))

	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		classified := ClassifyError(err)
		classified.Model = c.config.Model
		return nil, classified
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, NewError(ErrorTypeEmpty, "no text content in response", false, nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.InputTokens),
		zap.Int("completion_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &GenerateResponseResult{
		Content:          sb.String(),
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}, nil
}

// GetModel returns the configured model name.
func (c *AnthropicClient) GetModel() string {
	return c.config.Model
}

// GetEndpoint returns the configured endpoint.
func (c *AnthropicClient) GetEndpoint() string {
	return c.config.Endpoint
}
