package llm

import "context"

// Provider is a chat completion backend: Gemini, OpenAI, Anthropic or Ollama.
// Implementations report failures as ErrOracleUnavailable or
// ErrMalformedResponse.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	Name() string
}
