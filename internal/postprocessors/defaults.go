package postprocessors

import (
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/postprocessors/chunker"
	"github.com/custodia-labs/ragdocs/internal/postprocessors/truncate"
)

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Words per chunk (default: 500)
//   - overlap (int): Words shared between chunks (default: 50)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...)
}

// buildTruncate creates a truncating processor.
// Supported config keys:
//   - max_chars (int): Maximum passage length (default: 32000)
func buildTruncate(cfg map[string]any) (driven.PostProcessor, error) {
	maxChars := truncate.DefaultMaxChars
	if v, ok := getIntFromConfig(cfg, "max_chars"); ok {
		maxChars = v
	}
	return truncate.New(maxChars)
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON/YAML parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
