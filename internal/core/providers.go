package core

import "context"

// Embedder converts text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dims() int
}

// VectorIndex returns the k nearest stored chunks for a query vector,
// ordered by descending similarity.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, k int) ([]Chunk, error)
	Stats(ctx context.Context) (IndexStats, error)
}

// IndexWriter is implemented by indexes that accept new documents.
type IndexWriter interface {
	Upsert(ctx context.Context, docs []Document) error
}

// ChatProvider sends a message list to a language model and returns the generated text.
type ChatProvider interface {
	Chat(ctx context.Context, messages []Message, params GenerationParams) (string, error)
}

type GenerationParams struct {
	Model       string
	Temperature float64
	MaxTokens   int
}
