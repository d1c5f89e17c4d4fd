package rag

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedder(t *testing.T) {
	e := NewHashEmbedder(384)
	ctx := context.Background()

	a, err := e.Embed(ctx, "What is diabetes?")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "What is diabetes?")
	require.NoError(t, err)
	c, err := e.Embed(ctx, "What is asthma?")
	require.NoError(t, err)

	assert.Len(t, a, 384)
	assert.Equal(t, 384, e.Dims())
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

func TestNormalize_Zero(t *testing.T) {
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (c *countingEmbedder) Dims() int { return 2 }

func TestCachedEmbedder(t *testing.T) {
	next := &countingEmbedder{}
	cached, err := NewCachedEmbedder(next, 100)
	require.NoError(t, err)
	defer cached.Close()

	ctx := context.Background()
	first, err := cached.Embed(ctx, "fever")
	require.NoError(t, err)
	cached.Wait()

	second, err := cached.Embed(ctx, "fever")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, 2, cached.Dims())

	second[0] = 99
	third, err := cached.Embed(ctx, "fever")
	require.NoError(t, err)
	assert.Equal(t, float32(5), third[0], "cached vectors are not aliased")
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	next := &countingEmbedder{err: errors.New("down")}
	cached, err := NewCachedEmbedder(next, 10)
	require.NoError(t, err)
	defer cached.Close()

	_, err = cached.Embed(context.Background(), "x")
	require.Error(t, err)
	cached.Wait()
	_, err = cached.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestOpenAIEmbedder(t *testing.T) {
	var req struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"mini","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25,0.125]}],"usage":{"prompt_tokens":1,"total_tokens":1}}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{BaseURL: srv.URL, APIKey: "key", Model: "mini", Dims: 3})
	vec, err := e.Embed(context.Background(), "chest pain")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25, 0.125}, vec)
	assert.Equal(t, []string{"chest pain"}, req.Input)
	assert.Equal(t, "mini", req.Model)
}

func TestOpenAIEmbedder_DimsMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"object":"embedding","index":0,"embedding":[1,2]}]}`))
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder(OpenAIEmbedderConfig{BaseURL: srv.URL, APIKey: "key", Model: "mini", Dims: 3})
	_, err := e.Embed(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 2 dims")
}

func TestNewEmbedder(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.RAGConfig
		wantErr bool
	}{
		{name: "hash", cfg: config.RAGConfig{EmbeddingProvider: config.EmbeddingHash, EmbeddingDims: 8}},
		{name: "hash cached", cfg: config.RAGConfig{EmbeddingProvider: config.EmbeddingHash, EmbeddingDims: 8, EmbeddingCache: 10}},
		{name: "openai without key", cfg: config.RAGConfig{EmbeddingProvider: config.EmbeddingOpenAI, EmbeddingDims: 8}, wantErr: true},
		{name: "unknown", cfg: config.RAGConfig{EmbeddingProvider: "word2vec"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEmbedder(context.Background(), &tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 8, e.Dims())
		})
	}
}
