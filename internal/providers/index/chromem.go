package index

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
)

const metaSource = "source"

// Chromem is an embedded vector index persisted under the runtime directory.
type Chromem struct {
	col  *chromem.Collection
	name string
}

// NewChromem opens (or creates) a persistent collection. An empty path keeps it in memory.
func NewChromem(path, name string) (*Chromem, error) {
	var (
		db  *chromem.DB
		err error
	)
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("open chromem db: %w", err)
		}
	}

	// embeddings are always supplied by the caller
	col, err := db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", name, err)
	}
	return &Chromem{col: col, name: name}, nil
}

func (c *Chromem) Query(ctx context.Context, vector []float32, k int) ([]core.Chunk, error) {
	n := min(k, c.col.Count())
	if n < 1 {
		return nil, nil
	}

	results, err := c.col.QueryEmbedding(ctx, vector, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	chunks := make([]core.Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, core.Chunk{
			ID:     r.ID,
			Text:   r.Content,
			Source: r.Metadata[metaSource],
			Score:  r.Similarity,
		})
	}
	return chunks, nil
}

func (c *Chromem) Upsert(ctx context.Context, docs []core.Document) error {
	batch := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		batch = append(batch, chromem.Document{
			ID:        d.ID,
			Content:   d.Text,
			Embedding: d.Embedding,
			Metadata:  map[string]string{metaSource: d.Source},
		})
	}
	if err := c.col.AddDocuments(ctx, batch, 4); err != nil {
		return fmt.Errorf("chromem add: %w", err)
	}
	return nil
}

func (c *Chromem) Stats(_ context.Context) (core.IndexStats, error) {
	return core.IndexStats{
		Kind:      config.IndexChromem,
		Name:      c.name,
		Documents: c.col.Count(),
	}, nil
}
