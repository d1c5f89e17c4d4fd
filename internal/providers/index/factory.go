package index

import (
	"context"
	"fmt"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/internal/storage/sqlite"
	"github.com/sandevgo/medrag/pkg/log"
)

// Index is a vector index that can be both queried and written to.
type Index interface {
	core.VectorIndex
	core.IndexWriter
}

// New opens the vector index selected by VECTOR_INDEX.
func New(ctx context.Context, app *config.AppConfig, cfg *config.RAGConfig) (Index, error) {
	var (
		idx Index
		err error
	)

	switch cfg.IndexKind {
	case config.IndexPinecone:
		idx, err = NewPinecone(ctx, PineconeConfig{
			APIKey:    cfg.PineconeAPIKey,
			IndexName: cfg.IndexName,
			Host:      cfg.PineconeHost,
			Namespace: cfg.PineconeNamespace,
			TextKey:   cfg.PineconeTextKey,
			Timeout:   cfg.IndexTimeout,
		})
	case config.IndexChromem:
		idx, err = NewChromem(app.GetChromemPath(), cfg.IndexName)
	case config.IndexSQLite:
		idx, err = sqlite.OpenIndex(ctx, app.GetDatabasePath(), cfg.IndexName)
	default:
		err = fmt.Errorf("unknown vector index: %s", cfg.IndexKind)
	}
	if err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Info().
		Str("kind", cfg.IndexKind).
		Str("index", cfg.IndexName).
		Msg("vector index ready")
	return idx, nil
}
