// Package llm provides chat-completion clients for SQL generation.
package llm

import (
	"context"
)

// Client defines the single operation the assistant needs from a model
// provider: one prompt in, one raw completion out. Prompt construction and
// response parsing live outside the client, so provider implementations
// stay interchangeable.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete sends the prompt as a single user message and returns the
	// raw text of the model's reply.
	Complete(ctx context.Context, prompt string) (string, error)
}
