package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// tamuRetryableStatuses are gateway replies that mean "this model is not
// available, try the next one" rather than a hard failure.
var tamuRetryableStatuses = map[int]bool{
	http.StatusBadRequest:          true,
	http.StatusNotFound:            true,
	http.StatusUnprocessableEntity: true,
}

// TAMUClient implements Client against the TAMU OpenAI-compatible chat
// gateway. Generation walks the configured model list in order; any status
// outside tamuRetryableStatuses aborts immediately.
type TAMUClient struct {
	config     *Config
	httpClient *http.Client
}

// NewTAMUClient creates a new TAMU gateway client.
func NewTAMUClient(cfg *Config) (*TAMUClient, error) {
	if cfg.TAMUAPIKey == "" {
		return nil, fmt.Errorf("TAMU_API_KEY not configured")
	}
	if len(cfg.TAMUModels) == 0 {
		return nil, fmt.Errorf("TAMU_CHAT_MODELS is empty")
	}
	return &TAMUClient{
		config:     cfg,
		httpClient: http.DefaultClient,
	}, nil
}

type tamuMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tamuChatRequest struct {
	Model       string        `json:"model"`
	Messages    []tamuMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature *float64      `json:"temperature,omitempty"`
	TopP        *float64      `json:"top_p,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type tamuChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	Text string `json:"text"`
}

type tamuChatResponse struct {
	Choices []tamuChoice `json:"choices"`
}

// resolveURL joins the configured base URL and endpoint, tolerating bases
// that already end in /api.
func (c *TAMUClient) resolveURL(endpoint string) string {
	base := strings.TrimRight(c.config.TAMUBaseURL, "/")
	if strings.HasSuffix(base, "/api") {
		return base + endpoint
	}
	return base + "/api" + endpoint
}

// Generate produces text for a prompt, falling back across the configured
// model list when the gateway rejects a model.
func (c *TAMUClient) Generate(ctx context.Context, prompt string) (string, error) {
	request := tamuChatRequest{
		Messages:    []tamuMessage{{Role: "user", Content: prompt}},
		Stream:      false,
		Temperature: c.config.Temperature,
		TopP:        c.config.TopP,
		MaxTokens:   c.config.MaxTokens,
	}

	var lastErr error
	for _, model := range c.config.TAMUModels {
		request.Model = model

		text, status, err := c.chatCompletion(ctx, request)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if status == 0 || !tamuRetryableStatuses[status] {
			return "", err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("TAMU generate failed: %w", ErrNoModels)
}

// chatCompletion performs one gateway call. The returned status is non-zero
// only for HTTP-level rejections.
func (c *TAMUClient) chatCompletion(ctx context.Context, request tamuChatRequest) (string, int, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.resolveURL("/chat/completions"), bytes.NewReader(payload))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.TAMUAPIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("TAMU request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return "", resp.StatusCode,
			fmt.Errorf("TAMU generate failed: %d %s", resp.StatusCode, string(detail))
	}

	parsed, err := parseTAMUResponse(resp)
	if err != nil {
		return "", 0, err
	}
	if len(parsed.Choices) == 0 {
		return "", 0, nil
	}
	text := parsed.Choices[0].Message.Content
	if text == "" {
		text = parsed.Choices[0].Text
	}
	return strings.TrimSpace(text), 0, nil
}

// parseTAMUResponse handles both plain JSON bodies and text/event-stream
// bodies. The gateway sometimes streams even when stream=false; the deltas
// are reassembled into a single message.
func parseTAMUResponse(resp *http.Response) (*tamuChatResponse, error) {
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "text/event-stream") {
		var parsed tamuChatResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to decode TAMU response: %w", err)
		}
		return &parsed, nil
	}

	var chunks []string
	sawData := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		sawData = true
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}
		var event tamuChatResponse
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue // ignore malformed payloads
		}
		if len(event.Choices) > 0 && event.Choices[0].Delta.Content != "" {
			chunks = append(chunks, event.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TAMU stream: %w", err)
	}
	if !sawData {
		return nil, fmt.Errorf("TAMU response missing data payload")
	}
	if len(chunks) == 0 {
		return &tamuChatResponse{}, nil
	}

	reassembled := &tamuChatResponse{Choices: []tamuChoice{{}}}
	reassembled.Choices[0].Message.Content = strings.Join(chunks, "")
	return reassembled, nil
}

// Embed is not supported by the chat gateway.
func (c *TAMUClient) Embed(_ context.Context, _ string) ([]float64, error) {
	return nil, fmt.Errorf("TAMU provider does not support embeddings")
}

// Close is a no-op; the client holds no resources.
func (c *TAMUClient) Close() error { return nil }
