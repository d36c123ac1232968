package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

type mockAskService struct {
	answer     *domain.Answer
	err        error
	question   string
	maxResults int
}

func (m *mockAskService) Ask(_ context.Context, question string, maxResults int) (*domain.Answer, error) {
	m.question = question
	m.maxResults = maxResults
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Question:    question,
		Text:        "Lists are mutable sequences.",
		SourcesUsed: 1,
		Sources: []domain.SourceSummary{
			{SourceKey: "tutorial_datastructures", ChunkIndex: 0, Preview: "More on Lists\nThe list data type"},
		},
	}, nil
}

type mockRetrieveService struct {
	passages []domain.RetrievedPassage
	err      error
	topK     int
}

func (m *mockRetrieveService) Retrieve(_ context.Context, _ string, topK int) ([]domain.RetrievedPassage, error) {
	m.topK = topK
	return m.passages, m.err
}

type mockIngestService struct {
	mu       sync.Mutex
	report   *domain.IngestReport
	passages []domain.Passage
	uploaded []domain.Passage
	lastOpts domain.IngestOptions
	err      error
	runs     int
}

func (m *mockIngestService) Run(_ context.Context, opts domain.IngestOptions) (*domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.lastOpts = opts
	return m.reportOrDefault(), m.err
}

func (m *mockIngestService) Prepare(_ context.Context, opts domain.IngestOptions) ([]domain.Passage, *domain.IngestReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOpts = opts
	return m.passages, m.reportOrDefault(), m.err
}

func (m *mockIngestService) Upload(_ context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = passages
	return domain.UpsertResult{Submitted: len(passages), Accepted: len(passages)}, m.err
}

func (m *mockIngestService) reportOrDefault() *domain.IngestReport {
	if m.report != nil {
		return m.report
	}
	return &domain.IngestReport{
		Documents: 3,
		Passages:  10,
		Embedded:  10,
		Upsert:    domain.UpsertResult{Submitted: 10, Accepted: 10},
	}
}

type mockIndexService struct {
	stats    domain.IndexStats
	err      error
	created  bool
	recreate bool
	dropped  bool
}

func (m *mockIndexService) Stats(context.Context) (domain.IndexStats, error) { return m.stats, m.err }

func (m *mockIndexService) Create(_ context.Context, recreate bool) error {
	m.created = true
	m.recreate = recreate
	return m.err
}

func (m *mockIndexService) Drop(context.Context) error {
	m.dropped = true
	return m.err
}

type mockHealthService struct {
	report domain.HealthReport
}

func (m *mockHealthService) Check(context.Context) domain.HealthReport { return m.report }

type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	pingErr     error
	set         map[string]string
	embedding   domain.AIProvider
	llm         domain.AIProvider
	backend     domain.VectorBackend
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings(), set: make(map[string]string)}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, baseURL, apiKey string) error {
	m.embedding = p
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, BaseURL: baseURL, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, baseURL, apiKey string) error {
	m.llm = p
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, BaseURL: baseURL, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "bogus" {
		return domain.ErrInvalidConfig
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) SetVectorBackend(b domain.VectorBackend) error {
	m.backend = b
	m.settings.VectorIndex.Backend = b
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) ValidateEmbeddingConfig() error { return m.pingErr }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.pingErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

type mockScheduler struct {
	mu      sync.Mutex
	started bool
	stopped bool
	jobs    []domain.ScheduledJob
	runs    []domain.JobRun
	err     error
}

func (m *mockScheduler) Start(ctx context.Context) error {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return nil
}

func (m *mockScheduler) Jobs(context.Context) ([]domain.ScheduledJob, error) {
	return m.jobs, m.err
}

func (m *mockScheduler) History(_ context.Context, id string, limit int) ([]domain.JobRun, error) {
	var out []domain.JobRun
	for _, r := range m.runs {
		if r.JobID == id && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, m.err
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	ask      *mockAskService
	retrieve *mockRetrieveService
	ingest   *mockIngestService
	index    *mockIndexService
	health   *mockHealthService
	settings *mockSettingsService
}

// setupTestServices installs mocks and resets flag state.
// The returned func restores the previous services.
func setupTestServices() (*testServices, func()) {
	ts := &testServices{
		ask:      &mockAskService{},
		retrieve: &mockRetrieveService{},
		ingest:   &mockIngestService{},
		index:    &mockIndexService{stats: domain.IndexStats{DocumentCount: 1234, StorageSize: 2 * 1024 * 1024}},
		health: &mockHealthService{report: domain.NewHealthReport(
			domain.ComponentHealth{Service: "embedding", Healthy: true, LatencyMS: 40},
			domain.ComponentHealth{Service: "vector_index", Healthy: true, DocumentCount: 1234, LatencyMS: 12},
			domain.ComponentHealth{Service: "llm", Healthy: true, LatencyMS: 300},
		)},
		settings: newMockSettingsService(),
	}

	oldSetup := setup
	setup = nil
	resetFlags()
	Configure(&Services{
		Ask:      ts.ask,
		Retrieve: ts.retrieve,
		Ingest:   ts.ingest,
		Index:    ts.index,
		Health:   ts.health,
		Settings: ts.settings,
	})

	return ts, func() {
		Configure(&Services{})
		setup = oldSetup
		resetFlags()
		rootCmd.SetContext(context.Background())
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}
}

func resetFlags() {
	opts = Options{LogFormat: "console"}
	askMaxResults = domain.DefaultTopK
	askRetrieve = false
	ingestLimit = 0
	ingestDump = ""
	ingestFromDump = ""
	ingestDryRun = false
	indexRecreate = false
	serveAddr = ""
	telegramMaxResults = 0
	tuiMaxResults = domain.DefaultTopK
	scheduleHistory = 5
	versionJSON = false
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}
