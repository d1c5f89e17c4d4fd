package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medrag/pkg/log"
)

const (
	ProviderGroq       = "groq"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderCustom     = "custom"
)

type LLMConfig struct {
	Provider    string        `env:"LLM_PROVIDER" envDefault:"groq"`
	Model       string        `env:"LLM_MODEL" envDefault:"llama-3.1-8b-instant"`
	Temperature float64       `env:"LLM_TEMPERATURE" envDefault:"0.5"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS" envDefault:"300"`
	Timeout     time.Duration `env:"LLM_TIMEOUT" envDefault:"60s"`

	GroqAPIKey       string `env:"GROQ_API_KEY"`
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	OllamaAPIKey     string `env:"OLLAMA_API_KEY"`
	OllamaBaseURL    string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`

	CustomOpenAIBaseURL string `env:"CUSTOM_OPENAI_BASE_URL"`
	CustomOpenAIAPIKey  string `env:"CUSTOM_OPENAI_API_KEY"`
}

func LoadLLMConfig() (*LLMConfig, error) {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c, err := LoadLLMConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

func (c LLMConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("LLM_MAX_TOKENS must be >= 1, got %d", c.MaxTokens)
	}
	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}

	switch c.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
		if c.GetAPIKey() == "" {
			return fmt.Errorf("api key for provider %q is not set", c.Provider)
		}
	case ProviderOllama:
	case ProviderCustom:
		if c.CustomOpenAIBaseURL == "" {
			return fmt.Errorf("CUSTOM_OPENAI_BASE_URL is required for the custom provider")
		}
	default:
		return fmt.Errorf("unknown llm provider: %s", c.Provider)
	}
	return nil
}

func (c LLMConfig) GetAPIKey() string {
	switch c.Provider {
	case ProviderGroq:
		return c.GroqAPIKey
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderAnthropic:
		return c.AnthropicAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	case ProviderOllama:
		return c.OllamaAPIKey
	case ProviderCustom:
		return c.CustomOpenAIAPIKey
	default:
		return ""
	}
}
