package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/sandevgo/medrag/internal/core"
)

const kindSQLite = "sqlite"

// ChunkIndex keeps chunk text in a regular table and embeddings in sqlite-vec
// vec0 tables, one per embedding width, partitioned by collection.
type ChunkIndex struct {
	db         *sql.DB
	collection string
}

func NewChunkIndex(db *sql.DB, collection string) *ChunkIndex {
	return &ChunkIndex{db: db, collection: collection}
}

// OpenIndex opens the database at path, migrates it and returns the named collection.
func OpenIndex(ctx context.Context, path, collection string) (*ChunkIndex, error) {
	db, err := NewDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewChunkIndex(db, collection), nil
}

func vecTable(dims int) string {
	return fmt.Sprintf("chunks_vec_%d", dims)
}

func ensureVecTable(ctx context.Context, q execer, dims int) error {
	_, err := q.ExecContext(ctx, fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING vec0(collection text partition key, embedding float[%d] distance_metric=cosine)`,
		vecTable(dims), dims))
	if err != nil {
		return fmt.Errorf("failed to create vector table: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ChunkIndex) Upsert(ctx context.Context, docs []core.Document) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range docs {
		if err := r.upsertOne(ctx, tx, d); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *ChunkIndex) upsertOne(ctx context.Context, tx *sql.Tx, d core.Document) error {
	dims := len(d.Embedding)
	if dims == 0 {
		return fmt.Errorf("chunk %s has no embedding", d.ID)
	}
	if err := ensureVecTable(ctx, tx, dims); err != nil {
		return err
	}

	blob, err := sqlite_vec.SerializeFloat32(d.Embedding)
	if err != nil {
		return fmt.Errorf("failed to serialize vector: %w", err)
	}

	var (
		rowID   int64
		oldDims int
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, dims FROM chunks WHERE collection = ? AND chunk_id = ?`,
		r.collection, d.ID,
	).Scan(&rowID, &oldDims)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chunks (chunk_id, collection, content, source, dims) VALUES (?, ?, ?, ?, ?)`,
			d.ID, r.collection, d.Text, d.Source, dims)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", d.ID, err)
		}
		if rowID, err = res.LastInsertId(); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("failed to look up chunk %s: %w", d.ID, err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE chunks SET content = ?, source = ?, dims = ? WHERE id = ?`,
			d.Text, d.Source, dims, rowID); err != nil {
			return fmt.Errorf("failed to update chunk %s: %w", d.ID, err)
		}
		if err := ensureVecTable(ctx, tx, oldDims); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE rowid = ?`, vecTable(oldDims)), rowID); err != nil {
			return fmt.Errorf("failed to replace vector of chunk %s: %w", d.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (rowid, collection, embedding) VALUES (?, ?, ?)`, vecTable(dims)),
		rowID, r.collection, blob); err != nil {
		return fmt.Errorf("failed to insert vector of chunk %s: %w", d.ID, err)
	}
	return nil
}

// Query runs a KNN search over the collection. Score is cosine similarity.
func (r *ChunkIndex) Query(ctx context.Context, vector []float32, k int) ([]core.Chunk, error) {
	if len(vector) == 0 || k < 1 {
		return nil, nil
	}
	if err := ensureVecTable(ctx, r.db, len(vector)); err != nil {
		return nil, err
	}

	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			c.chunk_id, c.content, c.source, v.distance
		FROM %s v
		JOIN chunks c ON c.id = v.rowid
		WHERE v.embedding MATCH ? AND k = ? AND v.collection = ?
		ORDER BY v.distance
	`, vecTable(len(vector)))

	rows, err := r.db.QueryContext(ctx, query, blob, k, r.collection)
	if err != nil {
		return nil, fmt.Errorf("chunk search failed: %w", err)
	}
	defer rows.Close()

	var results []core.Chunk
	for rows.Next() {
		var (
			c        core.Chunk
			distance float64
		)
		if err := rows.Scan(&c.ID, &c.Text, &c.Source, &distance); err != nil {
			return nil, err
		}
		c.Score = float32(1 - distance)
		results = append(results, c)
	}
	return results, rows.Err()
}

func (r *ChunkIndex) Stats(ctx context.Context) (core.IndexStats, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE collection = ?`, r.collection).Scan(&n)
	if err != nil {
		return core.IndexStats{}, fmt.Errorf("failed to count chunks: %w", err)
	}
	return core.IndexStats{Kind: kindSQLite, Name: r.collection, Documents: n}, nil
}

func (r *ChunkIndex) Close() error {
	return r.db.Close()
}
