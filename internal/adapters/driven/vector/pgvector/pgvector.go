// Package pgvector implements the vector index on PostgreSQL with the
// pgvector extension. Queries go through bun; the schema is managed by
// golang-migrate from embedded SQL files.
package pgvector

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // driver for the migration connection
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "ragdocs_schema_migrations"

var (
	_ driven.VectorIndex      = (*Index)(nil)
	_ driven.IndexProvisioner = (*Index)(nil)
)

// Config holds connection settings.
type Config struct {
	// DSN is a postgres:// connection string.
	DSN string

	// IndexName partitions passages so several indexes can share a table.
	IndexName string

	// Dimensions is the embedding size of this index.
	Dimensions int
}

// passageRow is one row of rag_passages.
type passageRow struct {
	bun.BaseModel `bun:"table:rag_passages,alias:p"`

	IndexName     string    `bun:"index_name,pk"`
	ID            string    `bun:"id,pk"`
	SourceKey     string    `bun:"source_key,notnull"`
	ChunkIndex    int       `bun:"chunk_index,notnull"`
	Content       string    `bun:"content,notnull"`
	ContentLength int       `bun:"content_length,notnull"`
	Dimensions    int       `bun:"dimensions,notnull"`
	Embedding     Vector    `bun:"embedding,type:vector,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`

	Score float64 `bun:"score,scanonly"`
}

// Index is a pgvector-backed passage index.
type Index struct {
	db         *bun.DB
	dsn        string
	name       string
	dimensions int
}

// Open connects lazily; nothing is sent to the server until the first query.
func Open(cfg Config) (*Index, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("%w: pgvector DSN is required", domain.ErrInvalidConfig)
	}
	if cfg.IndexName == "" {
		cfg.IndexName = domain.DefaultIndexName
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.DefaultDimensions
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if logger.IsVerbose() {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return &Index{db: db, dsn: cfg.DSN, name: cfg.IndexName, dimensions: cfg.Dimensions}, nil
}

// Upsert inserts or replaces passages by ID. Passages without an embedding
// of the index dimension are skipped.
func (x *Index) Upsert(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	result := domain.UpsertResult{Submitted: len(passages)}

	now := time.Now().UTC()
	rows := make([]passageRow, 0, len(passages))
	for _, p := range passages {
		if !p.Searchable(x.dimensions) {
			continue
		}
		rows = append(rows, passageRow{
			IndexName:     x.name,
			ID:            p.ID,
			SourceKey:     p.SourceKey,
			ChunkIndex:    p.ChunkIndex,
			Content:       p.Content,
			ContentLength: p.ContentLength,
			Dimensions:    len(p.Embedding),
			Embedding:     Vector(p.Embedding),
			UpdatedAt:     now,
		})
	}
	if len(rows) == 0 {
		return result, nil
	}

	_, err := x.db.NewInsert().
		Model(&rows).
		On("CONFLICT (index_name, id) DO UPDATE").
		Set("source_key = EXCLUDED.source_key").
		Set("chunk_index = EXCLUDED.chunk_index").
		Set("content = EXCLUDED.content").
		Set("content_length = EXCLUDED.content_length").
		Set("dimensions = EXCLUDED.dimensions").
		Set("embedding = EXCLUDED.embedding").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return result, fmt.Errorf("upserting passages: %w", err)
	}
	result.Accepted = len(rows)
	return result, nil
}

// Search returns up to k passages ordered by cosine distance.
// Score is cosine similarity.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPassage, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrSearchFailure, len(query), x.dimensions)
	}

	var rows []passageRow
	if err := x.searchQuery(&rows, Vector(query), k).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: querying passages: %w", domain.ErrSearchFailure, err)
	}

	out := make([]domain.RetrievedPassage, len(rows))
	for i, r := range rows {
		out[i] = domain.RetrievedPassage{
			Passage: domain.Passage{
				ID:            r.ID,
				SourceKey:     r.SourceKey,
				ChunkIndex:    r.ChunkIndex,
				Content:       r.Content,
				ContentLength: r.ContentLength,
			},
			Score: r.Score,
			Rank:  i + 1,
		}
	}
	return out, nil
}

func (x *Index) searchQuery(dest *[]passageRow, vec Vector, k int) *bun.SelectQuery {
	return x.db.NewSelect().
		Model(dest).
		Column("id", "source_key", "chunk_index", "content", "content_length").
		ColumnExpr("1 - (embedding <=> ?::vector) AS score", vec).
		Where("index_name = ?", x.name).
		Where("dimensions = ?", x.dimensions).
		OrderExpr("embedding <=> ?::vector", vec).
		Limit(k)
}

// Stats reports the passage count, the table's total size and the bytes
// taken by this index's vectors.
func (x *Index) Stats(ctx context.Context) (domain.IndexStats, error) {
	var stats domain.IndexStats

	count, err := x.db.NewSelect().
		Model((*passageRow)(nil)).
		Where("index_name = ?", x.name).
		Count(ctx)
	if err != nil {
		return stats, fmt.Errorf("counting passages: %w", err)
	}
	stats.DocumentCount = int64(count)

	if err := x.db.NewRaw("SELECT pg_total_relation_size('rag_passages')").Scan(ctx, &stats.StorageSize); err != nil {
		return stats, fmt.Errorf("reading table size: %w", err)
	}
	if err := x.db.NewRaw(
		"SELECT COALESCE(SUM(pg_column_size(embedding)), 0) FROM rag_passages WHERE index_name = ?", x.name,
	).Scan(ctx, &stats.VectorIndexSize); err != nil {
		return stats, fmt.Errorf("reading vector size: %w", err)
	}
	return stats, nil
}

// EnsureIndex applies pending migrations.
func (x *Index) EnsureIndex(_ context.Context) error {
	return x.migrate(func(m *migrate.Migrate) error { return m.Up() })
}

// DropIndex rolls every migration back, dropping the passages table.
func (x *Index) DropIndex(_ context.Context) error {
	return x.migrate(func(m *migrate.Migrate) error { return m.Down() })
}

// Close closes the connection pool.
func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) migrate(step func(*migrate.Migrate) error) (err error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	sqldb, err := sql.Open("postgres", x.dsn)
	if err != nil {
		return fmt.Errorf("opening migration connection: %w", err)
	}
	driver, err := postgres.WithInstance(sqldb, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		sqldb.Close()
		return fmt.Errorf("%w: connecting to postgres: %w", domain.ErrVectorIndexUnavailable, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		driver.Close()
		return fmt.Errorf("preparing migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err == nil {
			err = errors.Join(srcErr, dbErr)
		}
	}()

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
