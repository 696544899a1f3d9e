package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Supported provider names for Config.Provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4"

	// DefaultMaxTokens caps completions for providers that require an
	// explicit limit.
	DefaultMaxTokens = 4000
)

// NewClient creates a client for the configured provider.
// Returns the Client interface to enable dependency injection of mocks.
func NewClient(cfg *Config, logger *zap.Logger) (Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		// Local OpenAI-compatible endpoints accept requests without a key.
		if cfg.APIKey == "" && cfg.BaseURL == "" {
			return nil, fmt.Errorf("api key is required for provider %q", cfg.Provider)
		}
		return newOpenAIClient(cfg, logger), nil
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("api key is required for provider %q", cfg.Provider)
		}
		return newAnthropicClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
