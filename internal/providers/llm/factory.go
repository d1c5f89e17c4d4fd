package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/pkg/log"
)

// NewProvider creates the ChatProvider selected by configuration.
func NewProvider(ctx context.Context, cfg *config.LLMConfig) (core.ChatProvider, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	switch cfg.Provider {
	case config.ProviderGroq:
		return NewGroq(cfg.GroqAPIKey, cfg.Timeout), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Timeout), nil
	case config.ProviderAnthropic:
		return NewAnthropic(cfg.AnthropicAPIKey, cfg.Timeout), nil
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Timeout), nil
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaBaseURL, cfg.OllamaAPIKey, cfg.Timeout), nil
	case config.ProviderCustom:
		return NewCustomOpenAI(cfg.CustomOpenAIBaseURL, cfg.CustomOpenAIAPIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
