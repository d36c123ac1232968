package normalisers

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/normalisers/docx"
	"github.com/custodia-labs/ragdocs/internal/normalisers/html"
	"github.com/custodia-labs/ragdocs/internal/normalisers/markdown"
	"github.com/custodia-labs/ragdocs/internal/normalisers/pdf"
	"github.com/custodia-labs/ragdocs/internal/normalisers/plaintext"
	"github.com/custodia-labs/ragdocs/internal/normalisers/xlsx"
)

// Registry maps file extensions to normalisers.
type Registry struct {
	byExt map[string]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.Normaliser)}
}

// Default returns a registry with every built-in normaliser.
func Default() *Registry {
	r := NewRegistry()
	r.Register(html.New())
	r.Register(markdown.New())
	r.Register(plaintext.New())
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	return r
}

// Register adds n for each of its extensions, replacing earlier entries.
func (r *Registry) Register(n driven.Normaliser) {
	for _, ext := range n.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = n
	}
}

// For returns the normaliser for filename's extension.
func (r *Registry) For(filename string) (driven.Normaliser, bool) {
	n, ok := r.byExt[strings.ToLower(filepath.Ext(filename))]
	return n, ok
}

// Normalise runs the matching normaliser on data.
func (r *Registry) Normalise(ctx context.Context, filename string, data []byte) (string, error) {
	n, ok := r.For(filename)
	if !ok {
		return "", fmt.Errorf("%w: no normaliser for %s", domain.ErrInvalidInput, filepath.Ext(filename))
	}
	return n.Normalise(ctx, filename, data)
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Only returns a registry restricted to the given extensions.
// Unknown extensions are ignored.
func (r *Registry) Only(exts ...string) *Registry {
	out := NewRegistry()
	for _, ext := range exts {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if n, ok := r.byExt[ext]; ok {
			out.byExt[ext] = n
		}
	}
	return out
}
