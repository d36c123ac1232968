// Package markdown provides the Normaliser for Markdown documents.
// Markdown is rendered to HTML with goldmark and then cleaned like any
// other HTML page, so code blocks and tables keep their text.
package markdown

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	htmlnorm "github.com/custodia-labs/ragdocs/internal/normalisers/html"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct {
	md goldmark.Markdown
}

// New creates a new Markdown normaliser with GitHub Flavored Markdown enabled.
func New() *Normaliser {
	return &Normaliser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "markdown"
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".md", ".markdown"}
}

// Normalise renders the document and returns its visible text.
func (n *Normaliser) Normalise(_ context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	if err := n.md.Convert(data, &buf); err != nil {
		return "", fmt.Errorf("%w: rendering %s: %w", domain.ErrInvalidInput, filename, err)
	}
	return htmlnorm.Clean(buf.String()), nil
}
