package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoModels is returned when every configured fallback model was rejected
// by the provider.
var ErrNoModels = errors.New("no available models")

// Client is an abstraction over LLM providers.
type Client interface {
	// Generate produces text for a prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// Embed produces an embedding vector for a text chunk.
	Embed(ctx context.Context, text string) ([]float64, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates an LLM client for the configured provider.
func NewClient(ctx context.Context, cfg *Config) (Client, error) {
	if cfg == nil {
		cfg = LoadConfig()
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case ProviderOllama:
		return NewOllamaClient(cfg), nil
	case ProviderTAMU:
		return NewTAMUClient(cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
