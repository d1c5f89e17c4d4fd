package index

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/core"
	"google.golang.org/protobuf/types/known/structpb"
)

const upsertBatchSize = 100

type PineconeConfig struct {
	APIKey    string
	IndexName string
	// Host is the data plane host of the index. When empty it is looked up
	// through the control plane by IndexName.
	Host      string
	Namespace string
	TextKey   string
	Timeout   time.Duration
	// ControlURL overrides the control plane endpoint.
	ControlURL string
}

// dataPlane is the subset of *pinecone.IndexConnection the index relies on.
type dataPlane interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
	DescribeIndexStats(ctx context.Context) (*pinecone.DescribeIndexStatsResponse, error)
	Close() error
}

// Pinecone serves a serverless Pinecone index through the official client.
type Pinecone struct {
	conn      dataPlane
	name      string
	namespace string
	textKey   string
}

func NewPinecone(ctx context.Context, cfg PineconeConfig) (*Pinecone, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY is not set")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey:     cfg.APIKey,
		Host:       cfg.ControlURL,
		RestClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create pinecone client: %w", err)
	}

	host := cfg.Host
	if host == "" {
		if host, err = describeHost(ctx, client, cfg.IndexName); err != nil {
			return nil, err
		}
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{
		Host:      trimScheme(host),
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to index %q: %w", cfg.IndexName, err)
	}

	return newPinecone(conn, cfg), nil
}

func newPinecone(conn dataPlane, cfg PineconeConfig) *Pinecone {
	if cfg.TextKey == "" {
		cfg.TextKey = "text"
	}
	return &Pinecone{
		conn:      conn,
		name:      cfg.IndexName,
		namespace: cfg.Namespace,
		textKey:   cfg.TextKey,
	}
}

func describeHost(ctx context.Context, client *pinecone.Client, name string) (string, error) {
	idx, err := client.DescribeIndex(ctx, name)
	if err != nil {
		return "", fmt.Errorf("describe index %q: %w", name, err)
	}
	if idx.Host == "" {
		return "", fmt.Errorf("describe index %q: empty host", name)
	}
	return idx.Host, nil
}

func trimScheme(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimRight(host, "/")
}

func (p *Pinecone) Query(ctx context.Context, vector []float32, k int) ([]core.Chunk, error) {
	res, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(k),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone query: %w", err)
	}

	chunks := make([]core.Chunk, 0, len(res.Matches))
	for _, m := range res.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		fields := m.Vector.Metadata.GetFields()
		chunks = append(chunks, core.Chunk{
			ID:     m.Vector.Id,
			Text:   fields[p.textKey].GetStringValue(),
			Source: fields[metaSource].GetStringValue(),
			Score:  m.Score,
		})
	}
	return chunks, nil
}

func (p *Pinecone) Upsert(ctx context.Context, docs []core.Document) error {
	for start := 0; start < len(docs); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(docs))

		batch := make([]*pinecone.Vector, 0, end-start)
		for _, d := range docs[start:end] {
			meta, err := structpb.NewStruct(map[string]any{
				p.textKey:  d.Text,
				metaSource: d.Source,
			})
			if err != nil {
				return fmt.Errorf("metadata for %s: %w", d.ID, err)
			}
			batch = append(batch, &pinecone.Vector{
				Id:       d.ID,
				Values:   d.Embedding,
				Metadata: meta,
			})
		}

		if _, err := p.conn.UpsertVectors(ctx, batch); err != nil {
			return fmt.Errorf("pinecone upsert: %w", err)
		}
	}
	return nil
}

func (p *Pinecone) Stats(ctx context.Context) (core.IndexStats, error) {
	res, err := p.conn.DescribeIndexStats(ctx)
	if err != nil {
		return core.IndexStats{}, fmt.Errorf("pinecone stats: %w", err)
	}

	count := int(res.TotalVectorCount)
	if p.namespace != "" {
		count = 0
		if ns, ok := res.Namespaces[p.namespace]; ok && ns != nil {
			count = int(ns.VectorCount)
		}
	}
	return core.IndexStats{
		Kind:      config.IndexPinecone,
		Name:      p.name,
		Documents: count,
	}, nil
}

func (p *Pinecone) Close() error {
	return p.conn.Close()
}
