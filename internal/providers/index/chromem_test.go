package index

import (
	"context"
	"testing"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromem_UpsertQueryStats(t *testing.T) {
	ctx := context.Background()
	c, err := NewChromem("", "test")
	require.NoError(t, err)

	chunks, err := c.Query(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, chunks, "empty collection yields no chunks")

	require.NoError(t, c.Upsert(ctx, []core.Document{
		{ID: "1", Text: "diabetes", Source: "a.pdf", Embedding: []float32{1, 0, 0}},
		{ID: "2", Text: "asthma", Source: "b.pdf", Embedding: []float32{0, 1, 0}},
		{ID: "3", Text: "mostly diabetes", Source: "a.pdf", Embedding: []float32{0.9, 0.1, 0}},
	}))

	chunks, err = c.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, chunks, 3, "k is clamped to the collection size")
	assert.Equal(t, "diabetes", chunks[0].Text)
	assert.Equal(t, "a.pdf", chunks[0].Source)
	assert.Equal(t, "mostly diabetes", chunks[1].Text)
	assert.Equal(t, "asthma", chunks[2].Text)
	assert.GreaterOrEqual(t, chunks[0].Score, chunks[1].Score)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, "chromem", stats.Kind)
}

func TestChromem_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := NewChromem(dir, "books")
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx, []core.Document{{ID: "1", Text: "t", Source: "s", Embedding: []float32{1, 0}}}))

	reopened, err := NewChromem(dir, "books")
	require.NoError(t, err)
	stats, err := reopened.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
}
