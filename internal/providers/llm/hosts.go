package llm

import (
	"time"

	"github.com/sandevgo/medrag/internal/core"
)

const (
	groqBaseURL       = "https://api.groq.com/openai"
	openRouterBaseURL = "https://openrouter.ai/api"
)

// Hosts below all speak the OpenAI chat completions dialect with bearer auth.

func bearer(baseURL, apiKey string, timeout time.Duration, extra map[string]string) *OpenAICompatible {
	return NewOpenAICompatible(OpenAICompatibleConfig{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		AuthHeader:   "Authorization",
		AuthPrefix:   "Bearer ",
		ExtraHeaders: extra,
		Timeout:      timeout,
	})
}

func NewGroq(apiKey string, timeout time.Duration) *OpenAICompatible {
	return bearer(groqBaseURL, apiKey, timeout, nil)
}

// NewOpenRouter sets the attribution headers OpenRouter asks clients to send.
func NewOpenRouter(apiKey string, timeout time.Duration) *OpenAICompatible {
	return bearer(openRouterBaseURL, apiKey, timeout, map[string]string{
		"HTTP-Referer": core.AppRepositoryURL,
		"X-Title":      core.AppName,
	})
}

// NewOllama talks to a local Ollama. The key is only sent when set.
func NewOllama(baseURL, apiKey string, timeout time.Duration) *OpenAICompatible {
	return bearer(baseURL, apiKey, timeout, nil)
}

func NewCustomOpenAI(baseURL, apiKey string, timeout time.Duration) *OpenAICompatible {
	return bearer(baseURL, apiKey, timeout, nil)
}
