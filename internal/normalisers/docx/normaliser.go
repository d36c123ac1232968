// Package docx provides the Normaliser for Word documents.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"

	"github.com/nguyenthenguyen/docx"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/normalisers/plaintext"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	paragraphEnd = regexp.MustCompile(`</w:p>|<w:br\s*/>|<w:tab\s*/>`)
	xmlTags      = regexp.MustCompile(`<[^>]+>`)
)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the normaliser name.
func (n *Normaliser) Name() string {
	return "docx"
}

// SupportedExtensions returns the file extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Normalise returns the body text. Runs within a paragraph are joined
// directly; paragraphs, breaks and tabs become spaces.
func (n *Normaliser) Normalise(_ context.Context, filename string, data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: opening %s: %w", domain.ErrInvalidInput, filename, err)
	}
	defer r.Close()

	return ExtractText(r.Editable().GetContent()), nil
}

// ExtractText strips WordprocessingML markup from document.xml content.
func ExtractText(documentXML string) string {
	s := paragraphEnd.ReplaceAllString(documentXML, " ")
	s = xmlTags.ReplaceAllString(s, "")
	return plaintext.Collapse(html.UnescapeString(s))
}
