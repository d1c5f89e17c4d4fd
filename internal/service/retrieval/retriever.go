package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/sandevgo/medrag/pkg/log"
)

var errNotReady = errors.New("retrieval clients are not initialized")

type panicError struct {
	value any
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// Retriever turns a question into at most k context chunks.
type Retriever struct {
	init *Initializer
}

func NewRetriever(init *Initializer) *Retriever {
	return &Retriever{init: init}
}

// Retrieve issues exactly one embedding call and one index query.
// Failures are *core.RetrievalError.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) (chunks []core.Chunk, err error) {
	embedder, index, ok := r.init.Clients()
	if !ok {
		return nil, &core.RetrievalError{Op: "retrieve", Err: errNotReady}
	}

	defer func() {
		if p := recover(); p != nil {
			chunks, err = nil, &core.RetrievalError{Op: "retrieve", Err: panicError{p}}
		}
	}()

	start := time.Now()
	vector, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, &core.RetrievalError{Op: "embed", Err: err}
	}

	chunks, err = index.Query(ctx, vector, k)
	if err != nil {
		return nil, &core.RetrievalError{Op: "query", Err: err}
	}
	if len(chunks) > k {
		chunks = chunks[:k]
	}

	log.FromCtx(ctx).Debug().
		Int("k", k).
		Int("chunks", len(chunks)).
		Dur("took", time.Since(start)).
		Msg("retrieved context")
	return chunks, nil
}

// Texts returns the chunk texts in retrieval order.
func Texts(chunks []core.Chunk) []string {
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Text)
	}
	return out
}

// Sources returns the distinct non-empty chunk sources in retrieval order.
func Sources(chunks []core.Chunk) []string {
	seen := make(map[string]bool, len(chunks))
	var out []string
	for _, c := range chunks {
		if c.Source == "" || seen[c.Source] {
			continue
		}
		seen[c.Source] = true
		out = append(out, c.Source)
	}
	return out
}
