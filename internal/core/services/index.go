package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService exposes index statistics and schema provisioning.
type IndexService struct {
	index driven.VectorIndex
}

// NewIndexService creates an index service.
func NewIndexService(index driven.VectorIndex) *IndexService {
	return &IndexService{index: index}
}

// Stats reports the index contents.
func (s *IndexService) Stats(ctx context.Context) (domain.IndexStats, error) {
	if s.index == nil {
		return domain.IndexStats{}, domain.ErrVectorIndexUnavailable
	}
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return domain.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return stats, nil
}

// Create provisions the index, dropping it first when recreate is set.
func (s *IndexService) Create(ctx context.Context, recreate bool) error {
	p, err := s.provisioner()
	if err != nil {
		return err
	}
	if recreate {
		if err := p.DropIndex(ctx); err != nil {
			return fmt.Errorf("drop index: %w", err)
		}
	}
	if err := p.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

// Drop removes the index and everything in it.
func (s *IndexService) Drop(ctx context.Context) error {
	p, err := s.provisioner()
	if err != nil {
		return err
	}
	if err := p.DropIndex(ctx); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

func (s *IndexService) provisioner() (driven.IndexProvisioner, error) {
	if s.index == nil {
		return nil, domain.ErrVectorIndexUnavailable
	}
	p, ok := s.index.(driven.IndexProvisioner)
	if !ok {
		return nil, fmt.Errorf("index provisioning: %w", domain.ErrNotImplemented)
	}
	return p, nil
}
