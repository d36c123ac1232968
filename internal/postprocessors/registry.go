package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// BuilderFunc constructs a processor from its [pipeline.<name>] config table.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps the processor names used in pipeline config to builders.
type Registry map[string]BuilderFunc

// Defaults returns a registry holding the built-in processors.
func Defaults() Registry {
	return Registry{
		"chunker":  buildChunker,
		"truncate": buildTruncate,
	}
}

// Build constructs the named processor.
func (r Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	build, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (available: %s)",
			domain.ErrInvalidConfig, name, strings.Join(r.Names(), ", "))
	}
	p, err := build(cfg)
	if err != nil {
		return nil, fmt.Errorf("processor %s: %w", name, err)
	}
	return p, nil
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}
