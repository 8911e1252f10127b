package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds configuration for creating an LLM client.
type Config struct {
	Endpoint  string // Base URL; empty uses the provider default
	Model     string // e.g. "claude-3-haiku-20240307" or "gpt-4o-mini"
	APIKey    string
	MaxTokens int // Default max tokens when a request does not set one
}

func (c *Config) maxTokens(requested int) int {
	if requested > 0 {
		return requested
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 4000
}

// OpenAIClient talks to OpenAI-compatible chat completion endpoints.
type OpenAIClient struct {
	client *openai.Client
	config Config
	logger *zap.Logger
}

// NewOpenAIClient creates a client for an OpenAI-compatible endpoint.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &OpenAIClient{
		client: openai.NewClientWithConfig(clientConfig),
		config: *cfg,
		logger: logger.Named("llm").With(zap.String("provider", "openai")),
	}, nil
}

// GenerateResponse runs one chat completion.
func (c *OpenAIClient) GenerateResponse(ctx context.Context, prompt string, opts GenerateOptions) (*GenerateResponseResult, error) {
	var messages []openai.ChatCompletionMessage
	if opts.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: opts.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	req := openai.ChatCompletionRequest{
		Model:     c.config.Model,
		Messages:  messages,
		MaxTokens: c.config.maxTokens(opts.MaxTokens),
	}
	if opts.Temperature != nil {
		req.Temperature = float32(*opts.Temperature)
	}

	c.logger.Debug("LLM request",
		zap.String("model", c.config.Model),
		zap.Int("prompt_len", len(prompt)),
		zap.Int("max_tokens", req.MaxTokens))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		classified := ClassifyError(err)
		classified.Model = c.config.Model
		return nil, classified
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, NewError(ErrorTypeEmpty, "no content in response", false, nil)
	}

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return &GenerateResponseResult{
		Content:          resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}

// GetModel returns the configured model name.
func (c *OpenAIClient) GetModel() string {
	return c.config.Model
}

// GetEndpoint returns the configured endpoint.
func (c *OpenAIClient) GetEndpoint() string {
	return c.config.Endpoint
}
