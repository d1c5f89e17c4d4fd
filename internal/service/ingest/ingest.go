package ingest

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/internal/providers/rag"
	"github.com/sandevgo/medrag/pkg/log"
	"github.com/sandevgo/medrag/pkg/retry"
)

const defaultBatchSize = 64

type Index interface {
	core.VectorIndex
	core.IndexWriter
}

type Result struct {
	Pages    int
	Chunks   int
	Duration time.Duration
	Stats    core.IndexStats
}

// Ingester splits documents, embeds every passage and writes them to an index.
type Ingester struct {
	embedder  core.Embedder
	index     Index
	split     rag.SplitConfig
	retrier   *retry.Retrier
	batchSize int
}

func NewIngester(embedder core.Embedder, index Index, split rag.SplitConfig, retrier *retry.Retrier) *Ingester {
	if retrier == nil {
		retrier = retry.NewDefaultRetrier()
	}
	return &Ingester{
		embedder:  embedder,
		index:     index,
		split:     split,
		retrier:   retrier,
		batchSize: defaultBatchSize,
	}
}

func (in *Ingester) Run(ctx context.Context, pages []Page) (Result, error) {
	logger := log.FromCtx(ctx)
	start := time.Now()
	res := Result{Pages: len(pages)}

	batch := make([]core.Document, 0, in.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := in.retrier.Do(ctx, func(ctx context.Context) error {
			return in.index.Upsert(ctx, batch)
		})
		if err != nil {
			return fmt.Errorf("upsert batch: %w", err)
		}
		res.Chunks += len(batch)
		logger.Info().Int("chunks", res.Chunks).Msg("upserted")
		batch = batch[:0]
		return nil
	}

	for _, page := range pages {
		for _, seg := range rag.Split(page.Text, in.split) {
			doc, err := in.document(ctx, page.Source, seg.Text)
			if err != nil {
				return res, err
			}
			batch = append(batch, doc)
			if len(batch) == in.batchSize {
				if err := flush(); err != nil {
					return res, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	stats, err := in.index.Stats(ctx)
	if err != nil {
		return res, fmt.Errorf("index stats: %w", err)
	}
	res.Stats = stats
	res.Duration = time.Since(start)
	return res, nil
}

func (in *Ingester) document(ctx context.Context, source, text string) (core.Document, error) {
	id, err := gonanoid.New()
	if err != nil {
		return core.Document{}, fmt.Errorf("chunk id: %w", err)
	}

	var vec []float32
	err = in.retrier.Do(ctx, func(ctx context.Context) error {
		var err error
		vec, err = in.embedder.Embed(ctx, text)
		return err
	})
	if err != nil {
		return core.Document{}, fmt.Errorf("embed chunk from %s: %w", source, err)
	}

	return core.Document{ID: id, Text: text, Source: source, Embedding: vec}, nil
}
