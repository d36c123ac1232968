package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

type mockAskService struct {
	calls int
}

func (m *mockAskService) Ask(_ context.Context, question string, _ int) (*domain.Answer, error) {
	m.calls++
	return &domain.Answer{Question: question, Text: "Use a list comprehension.", Sources: []domain.SourceSummary{}}, nil
}

type mockHealthService struct{}

func (mockHealthService) Check(context.Context) domain.HealthReport {
	return domain.NewHealthReport(domain.ComponentHealth{Service: "llm", Healthy: true})
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := NewApp(&Ports{Ask: &mockAskService{}, Health: mockHealthService{}})
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	return app
}

// drive feeds msg to the app and then every message its commands produce,
// skipping batches and ticks that would block.
func drive(app *App, msg tea.Msg) *App {
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		model, cmd := app.Update(next)
		app = model.(*App)
		if cmd == nil {
			continue
		}
		switch out := cmd().(type) {
		case messages.ViewChanged, messages.AskCompleted, messages.StatusLoaded:
			queue = append(queue, out)
		}
	}
	return app
}

func TestNewApp_RequiresAsk(t *testing.T) {
	_, err := NewApp(&Ports{})
	assert.ErrorIs(t, err, ErrMissingAskService)

	_, err = NewApp(nil)
	assert.ErrorIs(t, err, ErrMissingAskService)
}

func TestNewPorts(t *testing.T) {
	p := NewPorts(&mockAskService{})
	assert.NoError(t, p.Validate())
}

func TestApp_StartsOnMenu(t *testing.T) {
	app, err := NewApp(NewPorts(&mockAskService{}))
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
	assert.NotNil(t, app.Init())

	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	app = model.(*App)
	assert.True(t, app.Ready())
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
	assert.Contains(t, app.View(), "Ask a question")
}

func TestApp_MenuToAskAndBack(t *testing.T) {
	app := newTestApp(t)

	app = drive(app, messages.ViewChanged{View: messages.ViewAsk})
	assert.Equal(t, messages.ViewAsk, app.CurrentView())

	app = drive(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_AskFlow(t *testing.T) {
	svc := &mockAskService{}
	app, err := NewApp(NewPorts(svc))
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	app = drive(app, messages.ViewChanged{View: messages.ViewAsk})

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("how do I filter a list")})
	app = model.(*App)
	model, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = model.(*App)
	require.NotNil(t, cmd)

	// The ask runs as its own command; feed its result back.
	app = drive(app, messages.AskCompleted{
		Question: "how do I filter a list",
		Answer:   &domain.Answer{Question: "how do I filter a list", Text: "Use a list comprehension."},
	})

	assert.Contains(t, app.View(), "Use a list comprehension.")
}

func TestApp_StatusView(t *testing.T) {
	app := newTestApp(t)

	app = drive(app, messages.ViewChanged{View: messages.ViewStatus})

	assert.Equal(t, messages.ViewStatus, app.CurrentView())
	assert.Contains(t, app.View(), "llm")
}

func TestApp_HelpView(t *testing.T) {
	app := newTestApp(t)

	app = drive(app, messages.ViewChanged{View: messages.ViewHelp})
	assert.Contains(t, app.View(), "previous question")

	app = drive(app, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewMenu, app.CurrentView())
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	_, cmd = app.Update(messages.Quit{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
