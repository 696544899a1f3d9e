package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewClient_OpenAI(t *testing.T) {
	client, err := NewClient(&Config{
		Provider: ProviderOpenAI,
		Model:    "gpt-4",
		APIKey:   "test-key",
	}, zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &openAIClient{}, client)
}

func TestNewClient_OpenAI_KeylessLocalEndpoint(t *testing.T) {
	client, err := NewClient(&Config{
		Provider: ProviderOpenAI,
		Model:    "llama-3.1-8b",
		BaseURL:  "http://localhost:8000/v1",
	}, zap.NewNop())

	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClient_Anthropic(t *testing.T) {
	client, err := NewClient(&Config{
		Provider: ProviderAnthropic,
		Model:    "claude-sonnet-4-5-20250929",
		APIKey:   "test-key",
	}, zap.NewNop())

	require.NoError(t, err)
	assert.IsType(t, &anthropicClient{}, client)
}

func TestNewClient_MissingModel(t *testing.T) {
	_, err := NewClient(&Config{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is required")
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
	}{
		{"openai without base url", ProviderOpenAI},
		{"anthropic", ProviderAnthropic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(&Config{
				Provider: tt.provider,
				Model:    "some-model",
			}, zap.NewNop())

			require.Error(t, err)
			assert.Contains(t, err.Error(), "api key is required")
		})
	}
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(&Config{
		Provider: "bedrock",
		Model:    "some-model",
		APIKey:   "test-key",
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported llm provider "bedrock"`)
}
