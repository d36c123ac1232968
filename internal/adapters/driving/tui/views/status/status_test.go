package status

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

type mockIndexService struct {
	stats domain.IndexStats
	err   error
}

func (m *mockIndexService) Stats(context.Context) (domain.IndexStats, error) { return m.stats, m.err }
func (m *mockIndexService) Create(context.Context, bool) error                { return nil }
func (m *mockIndexService) Drop(context.Context) error                        { return nil }

type mockHealthService struct {
	report domain.HealthReport
}

func (m *mockHealthService) Check(context.Context) domain.HealthReport { return m.report }

func loaded(t *testing.T, v *View) *View {
	t.Helper()
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	assert.True(t, v.Loading())
	v, _ = v.Update(cmd())
	return v
}

func TestView_RendersStatsAndHealth(t *testing.T) {
	index := &mockIndexService{stats: domain.IndexStats{DocumentCount: 42, StorageSize: 2048}}
	health := &mockHealthService{report: domain.NewHealthReport(
		domain.ComponentHealth{Service: "embedding", Healthy: true, LatencyMS: 12},
		domain.ComponentHealth{Service: "llm", Healthy: false, LatencyMS: 30},
	)}

	v := loaded(t, NewView(nil, nil, index, health))

	view := v.View()
	assert.False(t, v.Loading())
	assert.Contains(t, view, "Passages:      42")
	assert.Contains(t, view, "2.0 KiB")
	assert.Contains(t, view, "Vector index:  unknown")
	assert.Contains(t, view, "embedding")
	assert.Contains(t, view, "FAIL")
}

func TestView_StatsErrorIsHidden(t *testing.T) {
	index := &mockIndexService{err: errors.New("401 invalid api-key abc")}

	v := loaded(t, NewView(nil, nil, index, nil))

	view := v.View()
	assert.Contains(t, view, domain.UnavailableMessage)
	assert.NotContains(t, view, "abc")
	assert.Contains(t, view, "not configured")
}

func TestView_NoServices(t *testing.T) {
	v := loaded(t, NewView(nil, nil, nil, nil))

	assert.Contains(t, v.View(), "not configured")
}

func TestView_RefreshAndBack(t *testing.T) {
	v := loaded(t, NewView(nil, nil, &mockIndexService{}, nil))

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.IsType(t, messages.StatusLoaded{}, cmd())

	_, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewMenu}, cmd())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "unknown", formatBytes(0))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "3.0 MiB", formatBytes(3*1024*1024))
}
