// Package llm provides centralized LLM configuration and provider clients.
// Providers are interchangeable prompt->text functions; the agent layer never
// depends on a concrete provider.
package llm

import (
	"os"

	"github.com/cerebrochat/cerebrochat/internal/config"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOllama is a local Ollama instance
	ProviderOllama Provider = "ollama"
	// ProviderTAMU is the TAMU OpenAI-compatible chat gateway
	ProviderTAMU Provider = "tamu"
)

// Config holds provider selection and per-provider settings.
type Config struct {
	Provider Provider

	GeminiAPIKey     string
	GeminiChatModel  string
	GeminiEmbedModel string

	OllamaURL        string
	OllamaModel      string
	OllamaEmbedModel string

	TAMUAPIKey  string
	TAMUBaseURL string
	// TAMUModels is walked in order when the gateway reports a model as
	// unavailable (HTTP 400/404/422).
	TAMUModels []string

	// Sampling knobs; nil means provider default.
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// LoadConfig reads the provider configuration from environment variables.
// When LLM_PROVIDER is unset, Gemini is selected if an API key is present,
// otherwise Ollama.
func LoadConfig() *Config {
	cfg := &Config{
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiChatModel:  config.GetEnvString("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		GeminiEmbedModel: config.GetEnvString("GEMINI_EMBED_MODEL", "gemini-embedding-001"),
		OllamaURL:        config.GetEnvString("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:      config.GetEnvString("OLLAMA_MODEL", "llama3.1"),
		OllamaEmbedModel: config.GetEnvString("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		TAMUAPIKey:       os.Getenv("TAMU_API_KEY"),
		TAMUBaseURL:      config.GetEnvString("TAMU_BASE_URL", "https://chat.tamu.ai"),
		TAMUModels:       config.GetEnvList("TAMU_CHAT_MODELS", "gpt5.2,gpt5.1,gpt5"),
	}

	if t, ok := config.GetEnvFloat("LLM_TEMPERATURE"); ok {
		cfg.Temperature = &t
	}
	if p, ok := config.GetEnvFloat("LLM_TOP_P"); ok {
		cfg.TopP = &p
	}
	if m, ok := config.GetEnvFloat("LLM_MAX_TOKENS"); ok {
		tokens := int(m)
		cfg.MaxTokens = &tokens
	}

	switch Provider(os.Getenv("LLM_PROVIDER")) {
	case ProviderGemini:
		cfg.Provider = ProviderGemini
	case ProviderOllama:
		cfg.Provider = ProviderOllama
	case ProviderTAMU:
		cfg.Provider = ProviderTAMU
	default:
		if cfg.GeminiAPIKey != "" {
			cfg.Provider = ProviderGemini
		} else {
			cfg.Provider = ProviderOllama
		}
	}

	return cfg
}

// EmbedModelName returns the embedding model the selected provider uses, or
// "" when the provider does not support embeddings.
func (c *Config) EmbedModelName() string {
	switch c.Provider {
	case ProviderGemini:
		return c.GeminiEmbedModel
	case ProviderOllama:
		return c.OllamaEmbedModel
	default:
		return ""
	}
}
