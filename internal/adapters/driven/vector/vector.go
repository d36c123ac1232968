// Package vector opens the configured vector index backend.
package vector

import (
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/resilient"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/vector/azuresearch"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/vector/chromemdb"
	"github.com/custodia-labs/ragdocs/internal/adapters/driven/vector/pgvector"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/logger"
)

// Open creates the index for settings.VectorIndex.Backend.
// The returned index also implements driven.IndexProvisioner.
func Open(settings *domain.AppSettings) (driven.VectorIndex, error) {
	vs := settings.VectorIndex
	dims := Dimensions(settings)
	name := vs.IndexName
	if name == "" {
		name = domain.DefaultIndexName
	}

	var (
		idx driven.VectorIndex
		err error
	)
	switch vs.Backend {
	case domain.VectorBackendAzure:
		idx, err = azuresearch.New(azuresearch.Config{
			Endpoint:   vs.Endpoint,
			APIKey:     vs.APIKey,
			IndexName:  name,
			Dimensions: dims,
		})

	case domain.VectorBackendSQLite, "":
		idx, err = openSQLite(vs.DataDir, name, dims)

	case domain.VectorBackendMemory:
		idx = memory.NewVectorIndex(dims)

	case domain.VectorBackendChromem:
		path := ""
		if vs.DataDir != "" {
			path = filepath.Join(vs.DataDir, "chromem")
		}
		idx, err = chromemdb.Open(chromemdb.Config{Path: path, Collection: name, Dimensions: dims})

	case domain.VectorBackendPgvector:
		idx, err = pgvector.Open(pgvector.Config{DSN: vs.DSN, IndexName: name, Dimensions: dims})

	default:
		return nil, fmt.Errorf("%w: unsupported vector backend: %s", domain.ErrInvalidConfig, vs.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrVectorIndexUnavailable, err)
	}

	logger.Debug("vector index: %s (%s, %d dimensions)", vs.Backend.Description(), name, dims)

	if settings.Resilience.Enabled {
		idx = resilient.NewVectorIndex(idx, resilient.PolicyFromSettings(settings.Resilience))
	}
	return idx, nil
}

// Dimensions resolves the index vector size: the index setting, then the
// embedding setting, then the known size of the embedding model.
func Dimensions(settings *domain.AppSettings) int {
	if d := settings.VectorIndex.Dimensions; d > 0 {
		return d
	}
	if d := settings.Embedding.Dimensions; d > 0 {
		return d
	}
	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		return d
	}
	return domain.DefaultDimensions
}

// sqliteIndex owns its Store so closing the index closes the database.
type sqliteIndex struct {
	*sqlite.VectorIndex
	store *sqlite.Store
}

func (s *sqliteIndex) Close() error {
	return s.store.Close()
}

func openSQLite(dataDir, name string, dims int) (*sqliteIndex, error) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	idx := store.VectorIndex(name, dims)
	return &sqliteIndex{VectorIndex: idx, store: store}, nil
}
