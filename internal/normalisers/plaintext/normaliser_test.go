package plaintext

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.Equal(t, "plaintext", normaliser.Name())
}

func TestSupportedExtensions(t *testing.T) {
	exts := New().SupportedExtensions()
	assert.Contains(t, exts, ".txt")
	assert.Contains(t, exts, ".rst")
}

func TestNormalise_CollapsesWhitespace(t *testing.T) {
	text, err := New().Normalise(context.Background(), "notes.txt", []byte("  The  Zen\n\nof\tPython  \r\n"))
	require.NoError(t, err)
	assert.Equal(t, "The Zen of Python", text)
}

func TestNormalise_EmptyContent(t *testing.T) {
	text, err := New().Normalise(context.Background(), "empty.txt", nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestNormalise_UnicodeContent(t *testing.T) {
	text, err := New().Normalise(context.Background(), "u.txt", []byte("héllo wörld 日本語"))
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld 日本語", text)
}

func TestNormalise_InvalidUTF8(t *testing.T) {
	_, err := New().Normalise(context.Background(), "bin.txt", []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_LargeContent(t *testing.T) {
	large := strings.Repeat("word ", 100000)
	text, err := New().Normalise(context.Background(), "big.txt", []byte(large))
	require.NoError(t, err)
	assert.Len(t, strings.Fields(text), 100000)
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
