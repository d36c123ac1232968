// Package status renders the one-line bar under the ask view.
package status

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/styles"
)

// State is the phase of the current question.
type State int

const (
	StateReady State = iota
	StateAsking
	StateAnswered
	StateError
)

// Bar shows the outcome of the last question on the left and the keys
// that apply right now on the right.
type Bar struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model
	now    func() time.Time

	state   State
	message string
	sources int
	started time.Time
	took    time.Duration
	width   int
}

// NewBar creates a bar in the ready state.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	h := help.New()
	h.Styles.ShortKey = s.Muted
	h.Styles.ShortDesc = s.Muted
	h.Styles.ShortSeparator = s.Muted
	return &Bar{styles: s, keys: km, help: h, now: time.Now, width: 80}
}

// Asking marks a question as in flight and starts timing it.
func (b *Bar) Asking() {
	b.state = StateAsking
	b.message = ""
	b.started = b.now()
}

// Answered records how many sources the answer cites.
func (b *Bar) Answered(sources int) {
	b.state = StateAnswered
	b.sources = sources
	b.took = b.now().Sub(b.started)
}

// Failed shows message, which must be safe to display.
func (b *Bar) Failed(message string) {
	b.state = StateError
	b.message = message
}

// Clear returns to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
	b.sources = 0
	b.took = 0
}

// State returns the current phase.
func (b *Bar) State() State { return b.state }

// Message returns the error text shown in StateError.
func (b *Bar) Message() string { return b.message }

// SetWidth sets the rendered width.
func (b *Bar) SetWidth(width int) {
	b.width = width
	b.help.Width = width / 2
}

// View renders the bar padded to its width.
func (b *Bar) View() string {
	left := b.summary()
	right := b.help.ShortHelpView(b.bindings())

	gap := max(b.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return b.styles.StatusBar.Width(b.width).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, left, lipgloss.NewStyle().Width(gap).Render(""), right),
	)
}

func (b *Bar) summary() string {
	switch b.state {
	case StateAsking:
		return b.styles.Muted.Render("Asking...")
	case StateError:
		if b.message == "" {
			return b.styles.Error.Render("Error")
		}
		return b.styles.Error.Render("Error: " + b.message)
	case StateAnswered:
		noun := "sources"
		if b.sources == 1 {
			noun = "source"
		}
		return b.styles.Normal.Render(fmt.Sprintf("%d %s in %s", b.sources, noun, b.took.Round(100*time.Millisecond)))
	default:
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) bindings() []key.Binding {
	if b.state == StateAnswered {
		return b.keys.AnswerHelp()
	}
	return b.keys.ShortHelp()
}
