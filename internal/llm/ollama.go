package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OllamaClient implements Client against a local Ollama instance.
type OllamaClient struct {
	config     *Config
	httpClient *http.Client
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(cfg *Config) *OllamaClient {
	return &OllamaClient{
		config:     cfg,
		httpClient: http.DefaultClient,
	}
}

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Generate produces text for a prompt via Ollama's generate endpoint.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	options := map[string]any{}
	if c.config.Temperature != nil {
		options["temperature"] = *c.config.Temperature
	}
	if c.config.TopP != nil {
		options["top_p"] = *c.config.TopP
	}
	if c.config.MaxTokens != nil {
		options["num_predict"] = *c.config.MaxTokens
	}
	if len(options) == 0 {
		options = nil
	}

	var resp ollamaGenerateResponse
	err := c.post(ctx, "/api/generate", ollamaGenerateRequest{
		Model:   c.config.OllamaModel,
		Prompt:  prompt,
		Stream:  false,
		Options: options,
	}, &resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

// Embed produces an embedding vector via Ollama's embeddings endpoint.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp ollamaEmbedResponse
	err := c.post(ctx, "/api/embeddings", ollamaEmbedRequest{
		Model:  c.config.OllamaEmbedModel,
		Prompt: text,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embedding response missing values")
	}
	return resp.Embedding, nil
}

// Close is a no-op; the client holds no resources.
func (c *OllamaClient) Close() error { return nil }

func (c *OllamaClient) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.config.OllamaURL, "/")+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama request failed: %d %s", resp.StatusCode, string(detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode ollama response: %w", err)
	}
	return nil
}
