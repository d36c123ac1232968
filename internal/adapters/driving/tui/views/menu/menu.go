// Package menu is the landing screen of the TUI.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. An entry with Quit set exits the program
// instead of switching view.
type Item struct {
	Label string
	Hint  string
	View  messages.ViewType
	Quit  bool
}

// View lists the available screens. Entries are picked with the
// navigation keys and enter, or directly by their number.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item
	cursor int
	width  int
	height int
	ready  bool
}

// NewView creates the menu. Nil styles or keys fall back to the defaults.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles: s,
		keys:   km,
		items: []Item{
			{Label: "Ask a question", Hint: "Answers cite the documentation pages they draw on", View: messages.ViewAsk},
			{Label: "Index status", Hint: "Passage count and provider health", View: messages.ViewStatus},
			{Label: "Help", Hint: "Key bindings", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (v *View) Init() tea.Cmd { return nil }

// Update moves the cursor or selects an entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		k := msg.String()
		switch {
		case keymap.Matches(k, v.keys.Up):
			v.cursor = (v.cursor + len(v.items) - 1) % len(v.items)
		case keymap.Matches(k, v.keys.Down):
			v.cursor = (v.cursor + 1) % len(v.items)
		case keymap.Matches(k, v.keys.Submit):
			return v, v.choose(v.cursor)
		case k == "q":
			return v, tea.Quit
		default:
			if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(v.items) {
				v.cursor = n - 1
				return v, v.choose(v.cursor)
			}
		}
	}
	return v, nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

// View renders the entries with the selected one highlighted.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("ragdocs"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Questions over the Python documentation"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.cursor {
			b.WriteString(v.styles.Title.Render("> " + label))
		} else {
			b.WriteString(v.styles.Normal.Render("  " + label))
		}
		b.WriteString("\n")
	}

	if hint := v.items[v.cursor].Hint; hint != "" {
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(hint))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] Move  [1-" + strconv.Itoa(len(v.items)) + "] Jump  [Enter] Select  [q] Quit"))
	return b.String()
}

// SetDimensions records the terminal size.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Selected returns the cursor position.
func (v *View) Selected() int { return v.cursor }

// Items returns the menu entries.
func (v *View) Items() []Item { return v.items }
