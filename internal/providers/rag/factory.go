package rag

import (
	"context"
	"fmt"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/pkg/log"
)

// NewEmbedder builds the configured embedder, wrapped in a cache when enabled.
func NewEmbedder(ctx context.Context, cfg *config.RAGConfig) (core.Embedder, error) {
	var base core.Embedder

	switch cfg.EmbeddingProvider {
	case config.EmbeddingOpenAI:
		if cfg.EmbeddingAPIKey == "" && cfg.EmbeddingBaseURL == "" {
			return nil, fmt.Errorf("EMBEDDING_API_KEY is required for the openai embedder")
		}
		base = NewOpenAIEmbedder(OpenAIEmbedderConfig{
			BaseURL: cfg.EmbeddingBaseURL,
			APIKey:  cfg.EmbeddingAPIKey,
			Model:   cfg.EmbeddingModel,
			Dims:    cfg.EmbeddingDims,
			Timeout: cfg.IndexTimeout,
		})
	case config.EmbeddingHash:
		base = NewHashEmbedder(cfg.EmbeddingDims)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbeddingProvider)
	}

	log.FromCtx(ctx).Info().
		Str("provider", cfg.EmbeddingProvider).
		Str("model", cfg.EmbeddingModel).
		Int("dims", cfg.EmbeddingDims).
		Msg("embedder ready")

	if cfg.EmbeddingCache <= 0 {
		return base, nil
	}
	return NewCachedEmbedder(base, cfg.EmbeddingCache)
}
