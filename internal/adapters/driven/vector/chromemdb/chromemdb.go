// Package chromemdb implements the vector index on chromem-go, an embedded
// vector database persisted to a directory of gob files.
package chromemdb

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

var (
	_ driven.VectorIndex      = (*Index)(nil)
	_ driven.IndexProvisioner = (*Index)(nil)
)

// Metadata keys stored alongside each document.
const (
	metaSourceKey  = "source_key"
	metaChunkIndex = "chunk_index"
)

// Config selects where and how the collection is stored.
type Config struct {
	// Path is the database directory. Empty keeps everything in memory.
	Path string

	// Compress gzips persisted documents.
	Compress bool

	// Collection is the collection name (default: python-docs-index).
	Collection string

	// Dimensions is the expected embedding size.
	Dimensions int
}

// Index is a chromem collection holding passages.
type Index struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	name       string
	path       string
	dimensions int
}

// Open opens or creates the database and its collection.
func Open(cfg Config) (*Index, error) {
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultIndexName
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.DefaultDimensions
	}

	var db *chromem.DB
	if cfg.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(cfg.Path, cfg.Compress)
		if err != nil {
			return nil, fmt.Errorf("opening chromem database %s: %w", cfg.Path, err)
		}
	}

	x := &Index{db: db, name: cfg.Collection, path: cfg.Path, dimensions: cfg.Dimensions}
	if err := x.EnsureIndex(context.Background()); err != nil {
		return nil, err
	}
	return x, nil
}

// Upsert adds passages, replacing documents with the same ID.
// Passages without an embedding of the index dimension are skipped.
func (x *Index) Upsert(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	result := domain.UpsertResult{Submitted: len(passages)}

	docs := make([]chromem.Document, 0, len(passages))
	for _, p := range passages {
		if !p.Searchable(x.dimensions) {
			continue
		}
		docs = append(docs, chromem.Document{
			ID:      p.ID,
			Content: p.Content,
			Metadata: map[string]string{
				metaSourceKey:  p.SourceKey,
				metaChunkIndex: strconv.Itoa(p.ChunkIndex),
			},
			// chromem normalises in place, so hand it a copy.
			Embedding: append([]float32(nil), p.Embedding...),
		})
	}
	if len(docs) == 0 {
		return result, nil
	}

	c, err := x.current()
	if err != nil {
		return result, err
	}
	if err := c.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return result, fmt.Errorf("adding documents: %w", err)
	}
	result.Accepted = len(docs)
	return result, nil
}

// Search returns up to k passages by cosine similarity, best first.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPassage, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}
	if len(query) != x.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrSearchFailure, len(query), x.dimensions)
	}

	c, err := x.current()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailure, err)
	}
	// chromem refuses nResults larger than the collection.
	n := min(k, c.Count())
	if n == 0 {
		return []domain.RetrievedPassage{}, nil
	}

	results, err := c.QueryEmbedding(ctx, append([]float32(nil), query...), n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: querying collection: %w", domain.ErrSearchFailure, err)
	}

	out := make([]domain.RetrievedPassage, 0, len(results))
	for i, r := range results {
		chunk, err := strconv.Atoi(r.Metadata[metaChunkIndex])
		if err != nil {
			logger.Warn("chromem document %s has invalid chunk index %q", r.ID, r.Metadata[metaChunkIndex])
		}
		p := domain.NewPassage(r.Metadata[metaSourceKey], chunk, r.Content)
		p.ID = r.ID
		out = append(out, domain.RetrievedPassage{Passage: p, Score: float64(r.Similarity), Rank: i + 1})
	}
	return out, nil
}

// Stats reports the document count and, for persistent databases, the
// bytes on disk.
func (x *Index) Stats(_ context.Context) (domain.IndexStats, error) {
	c, err := x.current()
	if err != nil {
		return domain.IndexStats{}, err
	}

	count := int64(c.Count())
	stats := domain.IndexStats{
		DocumentCount:   count,
		VectorIndexSize: count * int64(x.dimensions) * 4,
	}
	if x.path != "" {
		size, err := dirSize(x.path)
		if err != nil {
			return stats, fmt.Errorf("measuring %s: %w", x.path, err)
		}
		stats.StorageSize = size
	}
	return stats, nil
}

// EnsureIndex creates the collection if it does not exist.
func (x *Index) EnsureIndex(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	c, err := x.db.GetOrCreateCollection(x.name, map[string]string{
		"dimensions": strconv.Itoa(x.dimensions),
	}, nil)
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", x.name, err)
	}
	x.collection = c
	return nil
}

// DropIndex deletes the collection and its persisted documents.
func (x *Index) DropIndex(_ context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.db.DeleteCollection(x.name); err != nil {
		return fmt.Errorf("deleting collection %s: %w", x.name, err)
	}
	x.collection = nil
	return nil
}

// Close is a no-op; chromem writes through on every change.
func (x *Index) Close() error {
	return nil
}

func (x *Index) current() (*chromem.Collection, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.collection == nil {
		return nil, fmt.Errorf("%w: collection %s does not exist", domain.ErrNotFound, x.name)
	}
	return x.collection, nil
}

func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += info.Size()
		return nil
	})
	return total, err
}
