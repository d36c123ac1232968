// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// SourceList renders the passages an answer was grounded on.
type SourceList struct {
	sources  []domain.SourceSummary
	selected int
	styles   *styles.Styles
	width    int
}

// NewSourceList creates a new source list component.
func NewSourceList(s *styles.Styles) *SourceList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &SourceList{styles: s, width: 80}
}

// View renders one line per source plus the preview of the selected one.
func (l *SourceList) View() string {
	if len(l.sources) == 0 {
		return l.styles.Muted.Render("No sources")
	}

	lines := make([]string, 0, len(l.sources)+3)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Sources (%d)", len(l.sources))))

	for i, src := range l.sources {
		label := fmt.Sprintf("%d. %s (chunk %d)", i+1, src.SourceKey, src.ChunkIndex)
		if i == l.selected {
			lines = append(lines, l.styles.Selected.Render("> "+label))
			continue
		}
		lines = append(lines, "  "+l.styles.Citation.Render(label))
	}

	if src := l.Selected(); src != nil && src.Preview != "" {
		maxLen := l.width - 4
		if maxLen < 20 {
			maxLen = 20
		}
		lines = append(lines, "", l.styles.Muted.Render("  "+domain.Truncate(src.Preview, maxLen)))
	}

	return strings.Join(lines, "\n")
}

// SetSources replaces the list and selects the first entry.
func (l *SourceList) SetSources(sources []domain.SourceSummary) {
	l.sources = sources
	l.selected = 0
}

// Sources returns the current sources.
func (l *SourceList) Sources() []domain.SourceSummary {
	return l.sources
}

// Selected returns the highlighted source, or nil if the list is empty.
func (l *SourceList) Selected() *domain.SourceSummary {
	if l.selected < 0 || l.selected >= len(l.sources) {
		return nil
	}
	return &l.sources[l.selected]
}

// MoveUp moves selection up.
func (l *SourceList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves selection down.
func (l *SourceList) MoveDown() {
	if l.selected < len(l.sources)-1 {
		l.selected++
	}
}

// SetWidth sets the width used to truncate previews.
func (l *SourceList) SetWidth(width int) {
	l.width = width
}

// Count returns the number of sources.
func (l *SourceList) Count() int {
	return len(l.sources)
}
