package list

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

func testSources() []domain.SourceSummary {
	return []domain.SourceSummary{
		{SourceKey: "tutorial_datastructures", ChunkIndex: 2, Preview: "Lists are mutable sequences"},
		{SourceKey: "reference_datamodel", ChunkIndex: 7, Preview: "Objects are Python's abstraction for data"},
	}
}

func TestSourceList_Empty(t *testing.T) {
	l := NewSourceList(nil)

	assert.Contains(t, l.View(), "No sources")
	assert.Nil(t, l.Selected())
}

func TestSourceList_RendersCitations(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	view := l.View()
	assert.Contains(t, view, "Sources (2)")
	assert.Contains(t, view, "1. tutorial_datastructures (chunk 2)")
	assert.Contains(t, view, "2. reference_datamodel (chunk 7)")
	assert.Contains(t, view, "Lists are mutable sequences")
	assert.NotContains(t, view, "abstraction for data")
}

func TestSourceList_Navigation(t *testing.T) {
	l := NewSourceList(nil)
	l.SetSources(testSources())

	l.MoveUp()
	assert.Equal(t, "tutorial_datastructures", l.Selected().SourceKey)

	l.MoveDown()
	l.MoveDown()
	require.NotNil(t, l.Selected())
	assert.Equal(t, "reference_datamodel", l.Selected().SourceKey)
	assert.Contains(t, l.View(), "abstraction for data")

	l.SetSources(testSources()[:1])
	assert.Equal(t, "tutorial_datastructures", l.Selected().SourceKey)
	assert.Equal(t, 1, l.Count())
}

func TestSourceList_TruncatesPreview(t *testing.T) {
	l := NewSourceList(nil)
	l.SetWidth(30)
	l.SetSources([]domain.SourceSummary{{SourceKey: "k", Preview: strings.Repeat("x", 100)}})

	assert.NotContains(t, l.View(), strings.Repeat("x", 27))
	assert.Contains(t, l.View(), strings.Repeat("x", 26))
}
