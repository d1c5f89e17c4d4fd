package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/medrag/pkg/log"
)

const (
	EmbeddingOpenAI = "openai"
	EmbeddingHash   = "hash"

	IndexPinecone = "pinecone"
	IndexChromem  = "chromem"
	IndexSQLite   = "sqlite"
)

type RAGConfig struct {
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"`
	EmbeddingModel    string `env:"EMBEDDING_MODEL" envDefault:"sentence-transformers/all-MiniLM-L6-v2"`
	EmbeddingDims     int    `env:"EMBEDDING_DIMS" envDefault:"384"`
	EmbeddingBaseURL  string `env:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   string `env:"EMBEDDING_API_KEY"`
	EmbeddingCache    int    `env:"EMBEDDING_CACHE_ITEMS" envDefault:"1000"`

	IndexKind    string        `env:"VECTOR_INDEX" envDefault:"pinecone"`
	IndexName    string        `env:"INDEX_NAME" envDefault:"medical-chatbot-index"`
	IndexTimeout time.Duration `env:"INDEX_TIMEOUT" envDefault:"15s"`

	PineconeAPIKey    string `env:"PINECONE_API_KEY"`
	PineconeHost      string `env:"PINECONE_INDEX_HOST"`
	PineconeNamespace string `env:"PINECONE_NAMESPACE"`
	PineconeTextKey   string `env:"PINECONE_TEXT_KEY" envDefault:"text"`

	InitRetryAfter time.Duration `env:"RAG_INIT_RETRY_AFTER" envDefault:"30s"`
}

func LoadRAGConfig() (*RAGConfig, error) {
	c := &RAGConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func NewRAGConfig(ctx context.Context) *RAGConfig {
	c, err := LoadRAGConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse RAG config")
	}
	return c
}

// Validate checks shape only. Credentials are checked when the retrieval
// clients are first constructed, so a missing key degrades retrieval instead
// of refusing to start.
func (c RAGConfig) Validate() error {
	switch c.EmbeddingProvider {
	case EmbeddingOpenAI, EmbeddingHash:
	default:
		return fmt.Errorf("unknown embedding provider: %s", c.EmbeddingProvider)
	}
	switch c.IndexKind {
	case IndexPinecone, IndexChromem, IndexSQLite:
	default:
		return fmt.Errorf("unknown vector index: %s", c.IndexKind)
	}
	if c.EmbeddingDims < 1 {
		return fmt.Errorf("EMBEDDING_DIMS must be >= 1, got %d", c.EmbeddingDims)
	}
	return nil
}
