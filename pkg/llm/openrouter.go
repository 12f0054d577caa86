package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"language-mirror-be/internal/pkg/logger"
)

// Canned replies used when the provider cannot answer. These go straight to
// the end user, so they read as apologies rather than errors.
const (
	fallbackNoKey      = "I'm currently unable to generate responses. Please contact the administrator."
	fallbackAPIError   = "Sorry, I encountered an error generating a response. Please try again later."
	fallbackTimeout    = "Sorry, the request timed out. Please try again later."
	fallbackConnection = "Sorry, I encountered a connection error. Please try again later."
	fallbackBadPayload = "Sorry, I encountered an error processing the response. Please try again later."
)

type OpenRouterClient struct {
	apiKey  string
	baseURL string
	model   string
	referer string
	client  *http.Client
	logger  logger.ILogger
}

func NewOpenRouterClient(apiKey, baseURL, model, referer string, timeout time.Duration, log logger.ILogger) *OpenRouterClient {
	return &OpenRouterClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		referer: referer,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

type chatCompletionRequest struct {
	Model            string    `json:"model"`
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	PresencePenalty  float64   `json:"presence_penalty"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (c *OpenRouterClient) Complete(ctx context.Context, systemPrompt string, history []Message) string {
	if c.apiKey == "" {
		return fallbackNoKey
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)

	payload := chatCompletionRequest{
		Model:            c.model,
		Messages:         messages,
		Temperature:      0.9,
		MaxTokens:        500,
		TopP:             1,
		PresencePenalty:  0.6,
		FrequencyPenalty: 0,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("llm", "failed to encode completion request", map[string]interface{}{"error": err.Error()})
		return fallbackAPIError
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		c.logger.Error("llm", "failed to build completion request", map[string]interface{}{"error": err.Error()})
		return fallbackAPIError
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("HTTP-Referer", c.referer)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil || isTimeout(err) {
			c.logger.Error("llm", "completion request timed out", map[string]interface{}{"error": err.Error()})
			return fallbackTimeout
		}
		c.logger.Error("llm", "completion request failed", map[string]interface{}{"error": err.Error()})
		return fallbackConnection
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("llm", "failed to read completion response", map[string]interface{}{"error": err.Error()})
		return fallbackConnection
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("llm", "completion API returned non-200", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(raw),
		})
		return fallbackAPIError
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || len(parsed.Choices) == 0 {
		c.logger.Error("llm", "malformed completion response", map[string]interface{}{"body": string(raw)})
		return fallbackBadPayload
	}
	return parsed.Choices[0].Message.Content
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if te, ok := err.(timeouter); ok {
		return te.Timeout()
	}
	if unwrapped, ok := err.(interface{ Unwrap() error }); ok {
		return isTimeout(unwrapped.Unwrap())
	}
	return false
}
