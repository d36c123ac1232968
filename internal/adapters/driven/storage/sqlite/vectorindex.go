package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/vector/exact"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

var (
	_ driven.VectorIndex      = (*VectorIndex)(nil)
	_ driven.IndexProvisioner = (*VectorIndex)(nil)
)

// VectorIndex stores passages in the passages table and ranks them by
// scanning every row of the index with exact cosine similarity.
type VectorIndex struct {
	store      *Store
	name       string
	dimensions int
}

// Upsert inserts or replaces passages by ID in one transaction.
// Passages without an embedding of the index dimension are rejected.
func (v *VectorIndex) Upsert(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	result := domain.UpsertResult{Submitted: len(passages)}
	if len(passages) == 0 {
		return result, nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("beginning upsert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO passages (index_name, id, source_key, chunk_index, content, content_length, dimensions, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(index_name, id) DO UPDATE SET
			source_key = excluded.source_key,
			chunk_index = excluded.chunk_index,
			content = excluded.content,
			content_length = excluded.content_length,
			dimensions = excluded.dimensions,
			embedding = excluded.embedding,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return result, fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	accepted := 0
	for _, p := range passages {
		if !p.Searchable(v.dimensions) {
			continue
		}
		if _, err := stmt.ExecContext(ctx, v.name, p.ID, p.SourceKey, p.ChunkIndex, p.Content,
			p.ContentLength, len(p.Embedding), encodeVector(p.Embedding), now); err != nil {
			return result, fmt.Errorf("upserting passage %s: %w", p.ID, err)
		}
		accepted++
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("committing upsert: %w", err)
	}
	result.Accepted = accepted
	return result, nil
}

// Search returns up to k passages nearest to query, best first.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPassage, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}
	if len(query) != v.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrSearchFailure, len(query), v.dimensions)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, source_key, chunk_index, content, content_length, embedding
		FROM passages
		WHERE index_name = ? AND dimensions = ?
		ORDER BY rowid
	`, v.name, v.dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: querying passages: %w", domain.ErrSearchFailure, err)
	}
	defer rows.Close()

	ranker := exact.NewRanker(query, k)
	for rows.Next() {
		var p domain.Passage
		var blob []byte
		if err := rows.Scan(&p.ID, &p.SourceKey, &p.ChunkIndex, &p.Content, &p.ContentLength, &blob); err != nil {
			return nil, fmt.Errorf("%w: scanning passage: %w", domain.ErrSearchFailure, err)
		}
		p.Embedding = decodeVector(blob)
		ranker.Add(p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating passages: %w", domain.ErrSearchFailure, err)
	}
	return ranker.Results(), nil
}

// Stats reports the passage count and the bytes of stored content and vectors.
func (v *VectorIndex) Stats(ctx context.Context) (domain.IndexStats, error) {
	var stats domain.IndexStats
	var contentBytes, vectorBytes sql.NullInt64
	err := v.store.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(LENGTH(CAST(content AS BLOB))), SUM(LENGTH(embedding))
		FROM passages WHERE index_name = ?
	`, v.name).Scan(&stats.DocumentCount, &contentBytes, &vectorBytes)
	if err != nil {
		return stats, fmt.Errorf("reading index stats: %w", err)
	}
	stats.VectorIndexSize = vectorBytes.Int64
	stats.StorageSize = contentBytes.Int64 + vectorBytes.Int64
	return stats, nil
}

// EnsureIndex records the index and its dimension.
// An existing index with another dimension is a configuration error.
func (v *VectorIndex) EnsureIndex(ctx context.Context) error {
	var dims int
	err := v.store.db.QueryRowContext(ctx,
		"SELECT dimensions FROM vector_indexes WHERE name = ?", v.name).Scan(&dims)
	switch {
	case err == sql.ErrNoRows:
		_, err = v.store.db.ExecContext(ctx,
			"INSERT INTO vector_indexes (name, dimensions, created_at) VALUES (?, ?, ?)",
			v.name, v.dimensions, time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("creating index %s: %w", v.name, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading index %s: %w", v.name, err)
	case dims != v.dimensions:
		return fmt.Errorf("%w: index %s holds %d-dimensional vectors, configured for %d",
			domain.ErrInvalidConfig, v.name, dims, v.dimensions)
	default:
		return nil
	}
}

// DropIndex deletes every passage of the index and its record.
func (v *VectorIndex) DropIndex(ctx context.Context) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning drop: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM passages WHERE index_name = ?", v.name); err != nil {
		return fmt.Errorf("deleting passages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM vector_indexes WHERE name = ?", v.name); err != nil {
		return fmt.Errorf("deleting index record: %w", err)
	}
	return tx.Commit()
}

// Close is a no-op; the Store owns the connection.
func (v *VectorIndex) Close() error {
	return nil
}

// encodeVector packs a vector as little-endian float32.
func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return vec
}
