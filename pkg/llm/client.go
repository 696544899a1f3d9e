// Package llm provides chat-completion clients for SQL generation.
package llm

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds configuration for creating an LLM client.
type Config struct {
	Provider  string        // "openai" or "anthropic"
	Model     string        // Model name, e.g., "gpt-4o"
	APIKey    string        // Optional for local OpenAI-compatible endpoints
	BaseURL   string        // Optional base URL override, e.g., "http://localhost:8000/v1"
	MaxTokens int           // Completion token cap; Anthropic requires one
	Timeout   time.Duration // Per-request deadline applied inside Complete
}

// openAIClient talks to OpenAI or any OpenAI-compatible endpoint.
type openAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOpenAIClient(cfg *Config, logger *zap.Logger) *openAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &openAIClient{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("llm"),
	}
}

// Complete sends the prompt as a single user-role message at temperature
// zero so repeated requests produce stable SQL.
func (c *openAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("LLM request",
		zap.String("model", c.model),
		zap.Int("prompt_len", len(prompt)))

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		// Temperature carries omitempty, so a literal 0 is dropped from the
		// request and the provider default applies. The smallest positive
		// float survives serialization and rounds to zero server-side.
		Temperature: math.SmallestNonzeroFloat32,
	})
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		llmErr := ClassifyError(err)
		llmErr.Model = c.model
		return "", llmErr
	}

	if len(resp.Choices) == 0 {
		return "", NewError(ErrorTypeUnknown, "no choices in response", false, nil)
	}

	content := resp.Choices[0].Message.Content
	elapsed := time.Since(start)

	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", elapsed))

	return content, nil
}

// Ensure openAIClient implements Client at compile time.
var _ Client = (*openAIClient)(nil)
