package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandevgo/medrag/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, collection string) *ChunkIndex {
	t.Helper()
	idx, err := OpenIndex(context.Background(), ":memory:", collection)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestChunkIndex_QueryOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, "books")

	require.NoError(t, idx.Upsert(ctx, []core.Document{
		{ID: "1", Text: "asthma", Source: "b.pdf", Embedding: []float32{0, 1, 0}},
		{ID: "2", Text: "diabetes", Source: "a.pdf", Embedding: []float32{1, 0, 0}},
		{ID: "3", Text: "mostly diabetes", Source: "a.pdf", Embedding: []float32{0.9, 0.1, 0}},
		{ID: "4", Text: "other dims", Source: "c.pdf", Embedding: []float32{1, 0}},
	}))

	chunks, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)

	require.Len(t, chunks, 2)
	assert.Equal(t, "diabetes", chunks[0].Text)
	assert.Equal(t, "a.pdf", chunks[0].Source)
	assert.InDelta(t, 1.0, chunks[0].Score, 1e-6)
	assert.Equal(t, "mostly diabetes", chunks[1].Text)
}

func TestChunkIndex_UpsertReplacesAndStats(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, "books")

	require.NoError(t, idx.Upsert(ctx, []core.Document{{ID: "1", Text: "old", Embedding: []float32{1}}}))
	require.NoError(t, idx.Upsert(ctx, []core.Document{{ID: "1", Text: "new", Embedding: []float32{1}}}))

	stats, err := idx.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.IndexStats{Kind: "sqlite", Name: "books", Documents: 1}, stats)

	chunks, err := idx.Query(ctx, []float32{1}, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new", chunks[0].Text)
}

func TestChunkIndex_CollectionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	a, err := OpenIndex(ctx, path, "a")
	require.NoError(t, err)
	require.NoError(t, a.Upsert(ctx, []core.Document{{ID: "1", Text: "t", Embedding: []float32{1}}}))
	require.NoError(t, a.Close())

	b, err := OpenIndex(ctx, path, "b")
	require.NoError(t, err)
	defer b.Close()

	chunks, err := b.Query(ctx, []float32{1}, 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkIndex_UpsertMovesVectorOnDimsChange(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t, "books")

	require.NoError(t, idx.Upsert(ctx, []core.Document{{ID: "1", Text: "short", Embedding: []float32{1, 0}}}))
	require.NoError(t, idx.Upsert(ctx, []core.Document{{ID: "1", Text: "wide", Embedding: []float32{0, 0, 1}}}))

	chunks, err := idx.Query(ctx, []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = idx.Query(ctx, []float32{0, 0, 1}, 3)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "wide", chunks[0].Text)
}

func TestChunkIndex_RejectsEmptyEmbedding(t *testing.T) {
	idx := newTestIndex(t, "books")

	err := idx.Upsert(context.Background(), []core.Document{{ID: "1", Text: "t"}})
	require.Error(t, err)
}

func TestNewDB_LoadsVecExtension(t *testing.T) {
	db, err := NewDB(context.Background(), ":memory:")
	require.NoError(t, err)
	defer db.Close()

	var version string
	require.NoError(t, db.QueryRow(`SELECT vec_version()`).Scan(&version))
	assert.NotEmpty(t, version)
}
