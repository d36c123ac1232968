package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/adapters/driving/telegram"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "ragdocs", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{
		"ask", "ingest", "stats", "index", "health", "settings",
		"serve", "mcp", "telegram", "tui", "schedule", "version",
	} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestPreRun_CallsSetupAndClose(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var got Options
	closed := false
	setup = func(_ context.Context, o Options) (*Services, error) {
		got = o
		return &Services{
			Ask:   ts.ask,
			Close: func() error { closed = true; return nil },
		}, nil
	}

	_, err := execute("--config", "/tmp/ragdocs.toml", "-v", "ask", "what is a dict")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ragdocs.toml", got.ConfigPath)
	assert.True(t, got.Verbose)
	assert.Equal(t, "what is a dict", ts.ask.question)
	assert.True(t, closed)
}

func TestPreRun_SetupError(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	setup = func(context.Context, Options) (*Services, error) {
		return nil, errors.New("config file is corrupt")
	}

	_, err := execute("health")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file is corrupt")
}

func TestPreRun_VersionSkipsSetup(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	called := false
	setup = func(context.Context, Options) (*Services, error) {
		called = true
		return &Services{}, nil
	}

	out, err := execute("version")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, "ragdocs version")
}

func TestPreRun_FlagOverridesConfigKeys(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	var got Options
	setup = func(_ context.Context, o Options) (*Services, error) {
		got = o
		return &Services{Ingest: ts.ingest}, nil
	}

	_, err := execute("ingest", "--recursive", "--corpus", "/srv/python-docs")
	require.NoError(t, err)

	assert.Equal(t, "true", got.Overrides["ingest.recursive"])
	assert.Equal(t, "/srv/python-docs", got.Overrides["ingest.corpus_dir"])
}

func TestCollectOverrides_IgnoresUnannotatedFlags(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	require.NoError(t, ingestCmd.ParseFlags([]string{"--limit", "5"}))
	overrides := collectOverrides(ingestCmd)
	assert.NotContains(t, overrides, "limit")
}

func TestServeCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	askService = nil

	_, err := execute("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ask service not configured")
}

func TestTelegramCmd_MissingToken(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("telegram")
	require.Error(t, err)
	assert.ErrorIs(t, err, telegram.ErrMissingToken)
}

func TestScheduleCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("schedule")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scheduler not configured")
}

func TestScheduleCmd_StopsOnCancel(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	s := &mockScheduler{}
	scheduler = s
	schedulerConfig = domain.DefaultSchedulerConfig()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rootCmd.SetArgs([]string{"schedule"})
	err := rootCmd.ExecuteContext(ctx)
	assert.NoError(t, err)
	assert.True(t, s.started)
}

func TestScheduleStatusCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	started := time.Date(2024, 5, 2, 3, 0, 0, 0, time.UTC)
	scheduler = &mockScheduler{
		jobs: []domain.ScheduledJob{{
			ID: domain.JobCorpusReindex, Name: "Corpus re-index", Schedule: "0 3 * * *",
			Enabled: true, LastRun: started, LastSuccess: started.Add(time.Minute),
			NextRun: started.Add(24 * time.Hour),
		}},
		runs: []domain.JobRun{
			{JobID: domain.JobCorpusReindex, StartedAt: started, EndedAt: started.Add(time.Minute),
				Success: true, Passages: 120, Accepted: 118},
			{JobID: domain.JobCorpusReindex, StartedAt: started.Add(-24 * time.Hour),
				EndedAt: started.Add(-24 * time.Hour), Error: "connection refused"},
		},
	}

	out, err := execute("schedule", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Corpus re-index (0 3 * * *, enabled)")
	assert.Contains(t, out, "118/120 passages")
	assert.Contains(t, out, "FAIL connection refused")
	assert.NotContains(t, out, "never")
}

func TestScheduleStatusCmd_HistoryLimit(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	scheduler = &mockScheduler{
		jobs: []domain.ScheduledJob{{ID: domain.JobCorpusReindex, Name: "Corpus re-index", Schedule: "0 3 * * *"}},
		runs: []domain.JobRun{
			{JobID: domain.JobCorpusReindex, Success: true, Passages: 10, Accepted: 10},
			{JobID: domain.JobCorpusReindex, Success: true, Passages: 20, Accepted: 20},
		},
	}

	out, err := execute("schedule", "status", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, "Next run:     never")
	assert.Contains(t, out, "10/10 passages")
	assert.NotContains(t, out, "20/20 passages")
}

func TestScheduleStatusCmd_NoJobs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	scheduler = &mockScheduler{}

	out, err := execute("schedule", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No jobs have been scheduled yet")
}

func TestStartBackgroundScheduler(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	s := &mockScheduler{}
	scheduler = s
	schedulerConfig = domain.SchedulerConfig{Enabled: true}

	stop := startBackgroundScheduler(context.Background())
	stop()

	assert.True(t, s.started)
	assert.True(t, s.stopped)
}

func TestStartBackgroundScheduler_Disabled(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	s := &mockScheduler{}
	scheduler = s
	schedulerConfig = domain.SchedulerConfig{Enabled: false}

	stop := startBackgroundScheduler(context.Background())
	stop()

	assert.False(t, s.started)
	assert.False(t, s.stopped)
}
