// Package ask provides the question and answer view for the TUI.
package ask

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
)

// chrome is the number of rows taken by everything except the answer viewport
// and the source list: title, input box, spacing and status bar.
const chrome = 9

// View asks questions and shows the answer with its sources.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	spinner   spinner.Model
	viewport  viewport.Model
	sources   *list.SourceList
	statusbar *status.Bar

	service    driving.AskService
	ctx        context.Context
	maxResults int

	asking bool
	answer *domain.Answer
	err    error
	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, service driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner)),
		viewport:   viewport.New(80, 10),
		sources:    list.NewSourceList(s),
		statusbar:  status.NewBar(s, km),
		service:    service,
		ctx:        context.Background(),
		maxResults: domain.DefaultTopK,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context passed to the ask service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithMaxResults sets how many passages each question retrieves.
func (v *View) WithMaxResults(n int) *View {
	v.maxResults = n
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.input.Focus())
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.AskCompleted:
		v.asking = false
		v.setResult(msg.Answer, msg.Err)
		return v, nil

	case spinner.TickMsg:
		if !v.asking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.asking {
		return v, nil
	}

	keyStr := msg.String()
	switch {
	case keymap.Matches(keyStr, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(keyStr, v.keymap.Submit):
		question := strings.TrimSpace(v.input.Value())
		if question == "" {
			return v, nil
		}
		v.input.Remember(question)
		v.input.Reset()
		v.asking = true
		v.err = nil
		v.statusbar.Asking()
		return v, tea.Batch(v.spinner.Tick, v.ask(question))

	case keymap.Matches(keyStr, v.keymap.HistoryPrev):
		v.input.Prev()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.HistoryNext):
		v.input.Next()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.NextSource):
		v.sources.MoveDown()
		return v, nil

	case keymap.Matches(keyStr, v.keymap.PrevSource):
		v.sources.MoveUp()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask returns a command that calls the service off the UI goroutine.
func (v *View) ask(question string) tea.Cmd {
	svc, ctx, n := v.service, v.ctx, v.maxResults
	return func() tea.Msg {
		if svc == nil {
			return messages.AskCompleted{Question: question, Err: ErrNoAskService}
		}
		answer, err := svc.Ask(ctx, question, n)
		return messages.AskCompleted{Question: question, Answer: answer, Err: err}
	}
}

func (v *View) setResult(answer *domain.Answer, err error) {
	v.err = err
	if err != nil {
		v.statusbar.Failed(publicMessage(err))
		return
	}

	v.answer = answer
	v.sources.SetSources(answer.Sources)
	v.statusbar.Answered(len(answer.Sources))
	v.viewport.SetContent(v.renderAnswer())
	v.viewport.GotoTop()
	v.layout()
}

func (v *View) renderAnswer() string {
	if v.answer == nil {
		return ""
	}
	width := v.width - 4
	if width < 20 {
		width = 20
	}
	return v.styles.Subtitle.Render(v.answer.Question) + "\n\n" +
		v.styles.Answer.Width(width).Render(v.answer.Text)
}

// publicMessage never exposes provider error detail.
func publicMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var pe *domain.PublicError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return domain.UnavailableMessage
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Python Docs Assistant"))
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n\n")

	switch {
	case v.asking:
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Searching the docs and writing an answer..."))
		b.WriteString("\n")
	case v.answer != nil:
		b.WriteString(v.viewport.View())
		b.WriteString("\n\n")
		b.WriteString(v.sources.View())
		b.WriteString("\n")
	default:
		b.WriteString(v.styles.Muted.Render("Type a question and press enter."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.sources.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
}

// layout sizes the viewport to the space left by the source list.
func (v *View) layout() {
	sourceRows := 0
	if n := v.sources.Count(); n > 0 {
		sourceRows = n + 3
	}
	h := v.height - chrome - sourceRows
	if h < 3 {
		h = 3
	}
	v.viewport.Width = v.width
	v.viewport.Height = h
	if v.answer != nil {
		v.viewport.SetContent(v.renderAnswer())
	}
}

// Reset clears the current answer but keeps question history.
func (v *View) Reset() {
	v.input.Reset()
	v.answer = nil
	v.err = nil
	v.asking = false
	v.sources.SetSources(nil)
	v.statusbar.Clear()
}

// Asking reports whether a request is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// Answer returns the last answer, or nil.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Err returns the last ask error.
func (v *View) Err() error {
	return v.err
}

// History returns the questions asked so far.
func (v *View) History() []string {
	return v.input.History()
}

// Input exposes the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
