// Package status provides the index and provider status view for the TUI.
package status

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
)

// View shows index statistics and provider health.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	index  driving.IndexService
	health driving.HealthService
	ctx    context.Context

	loading bool
	loaded  messages.StatusLoaded
	width   int
	height  int
	ready   bool
}

// NewView creates a status view. Either service may be nil.
func NewView(s *styles.Styles, km *keymap.KeyMap, index driving.IndexService, health driving.HealthService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keymap: km,
		index:  index,
		health: health,
		ctx:    context.Background(),
		width:  80,
		height: 24,
	}
}

// WithContext sets the context passed to the services.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the status.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	index, health, ctx := v.index, v.health, v.ctx
	return func() tea.Msg {
		var msg messages.StatusLoaded
		if index != nil {
			stats, err := index.Stats(ctx)
			if err != nil {
				msg.StatsErr = err
			} else {
				msg.Stats = &stats
			}
		}
		if health != nil {
			report := health.Check(ctx)
			msg.Health = &report
		}
		return msg
	}
}

// Update handles messages for the status view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.StatusLoaded:
		v.loading = false
		v.loaded = msg

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Back):
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		case keymap.Matches(msg.String(), v.keymap.Refresh):
			if !v.loading {
				return v, v.Init()
			}
		}
	}
	return v, nil
}

// View renders the status view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Status"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Checking..."))
		b.WriteString("\n")
	} else {
		v.renderStats(&b)
		b.WriteString("\n")
		v.renderHealth(&b)
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[r] Refresh  [esc] Back"))
	return b.String()
}

func (v *View) renderStats(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Index"))
	b.WriteString("\n")
	switch {
	case v.loaded.StatsErr != nil:
		b.WriteString(v.styles.Error.Render("  " + domain.UnavailableMessage))
	case v.loaded.Stats == nil:
		b.WriteString(v.styles.Muted.Render("  not configured"))
	default:
		s := v.loaded.Stats
		fmt.Fprintf(b, "  Passages:      %d\n", s.DocumentCount)
		fmt.Fprintf(b, "  Storage:       %s\n", formatBytes(s.StorageSize))
		fmt.Fprintf(b, "  Vector index:  %s", formatBytes(s.VectorIndexSize))
	}
	b.WriteString("\n")
}

func (v *View) renderHealth(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Providers"))
	b.WriteString("\n")
	if v.loaded.Health == nil {
		b.WriteString(v.styles.Muted.Render("  not configured"))
		b.WriteString("\n")
		return
	}
	for _, c := range v.loaded.Health.Components {
		mark := v.styles.Success.Render("ok  ")
		if !c.Healthy {
			mark = v.styles.Error.Render("FAIL")
		}
		fmt.Fprintf(b, "  %s %-16s %dms\n", mark, c.Service, c.LatencyMS)
	}
}

// formatBytes renders n with a binary unit, or "unknown" for zero.
func formatBytes(n int64) string {
	if n <= 0 {
		return "unknown"
	}
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Loading reports whether a refresh is in flight.
func (v *View) Loading() bool {
	return v.loading
}
