package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/medrag/internal/core"
)

// maxErrorBody caps how much of a failed response body ends up in an error.
const maxErrorBody = 512

type OpenAICompatible struct {
	baseProvider
}

type OpenAICompatibleConfig struct {
	BaseURL      string
	APIKey       string
	AuthHeader   string // e.g., "Authorization"
	AuthPrefix   string // e.g., "Bearer "
	ExtraHeaders map[string]string
	Timeout      time.Duration
}

func NewOpenAICompatible(cfg OpenAICompatibleConfig) *OpenAICompatible {
	headers := make(map[string]string, len(cfg.ExtraHeaders)+1)
	for k, v := range cfg.ExtraHeaders {
		headers[k] = v
	}
	if cfg.AuthHeader != "" && cfg.APIKey != "" {
		headers[cfg.AuthHeader] = cfg.AuthPrefix + cfg.APIKey
	}

	return &OpenAICompatible{
		baseProvider: newBaseProvider(strings.TrimRight(cfg.BaseURL, "/"), headers, cfg.Timeout),
	}
}

func (o *OpenAICompatible) Chat(ctx context.Context, messages []core.Message, params core.GenerationParams) (string, error) {
	payload := map[string]any{
		"model":       params.Model,
		"messages":    messages,
		"temperature": params.Temperature,
		"max_tokens":  params.MaxTokens,
	}

	status, data, err := o.postJSON(ctx, "/v1/chat/completions", payload)
	if err != nil {
		return "", err
	}
	return parseChatCompletion(status, data)
}

func parseChatCompletion(status int, data []byte) (string, error) {
	if status != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", status, truncate(string(data), maxErrorBody))
	}

	var result struct {
		Choices []struct {
			Message core.Message `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("empty choices: %s", truncate(string(data), maxErrorBody))
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
