package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

// --- Embedding ---

// mockEmbedder returns a deterministic bag-of-words vector.
type mockEmbedder struct {
	mu    sync.Mutex
	dims  int
	calls int
	err   error
	// failOn makes Embed fail for texts containing the substring.
	failOn string
	// short returns vectors of the wrong dimension for texts containing the substring.
	short string
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, domain.ErrEmbeddingFailure
	}
	if m.short != "" && strings.Contains(text, m.short) {
		return make([]float32, m.dims-1), nil
	}
	return bagOfWords(text, m.dims), nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int            { return m.dims }
func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(context.Context) error { return m.err }
func (m *mockEmbedder) Close() error               { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func bagOfWords(text string, dims int) []float32 {
	v := make([]float32, dims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,?!")))
		v[int(h.Sum32())%dims]++
	}
	v[0] += 0.01
	return v
}

// --- Vector index ---

type mockIndex struct {
	mu          sync.Mutex
	results     []domain.RetrievedPassage
	searchErr   error
	upsertErr   error
	statsErr    error
	searchCalls int
	lastK       int
	upserted    []domain.Passage
	rejectEvery int
	stats       domain.IndexStats
}

func (m *mockIndex) Upsert(_ context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return domain.UpsertResult{}, m.upsertErr
	}
	result := domain.UpsertResult{Submitted: len(passages)}
	for i, p := range passages {
		if m.rejectEvery > 0 && (i+1)%m.rejectEvery == 0 {
			continue
		}
		m.upserted = append(m.upserted, p)
		result.Accepted++
	}
	return result, nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, k int) ([]domain.RetrievedPassage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastK = k
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if len(m.results) > k {
		return m.results[:k], nil
	}
	return m.results, nil
}

func (m *mockIndex) Stats(context.Context) (domain.IndexStats, error) {
	if m.statsErr != nil {
		return domain.IndexStats{}, m.statsErr
	}
	return m.stats, nil
}

func (m *mockIndex) Close() error { return nil }

// mockProvisionedIndex adds schema provisioning.
type mockProvisionedIndex struct {
	mockIndex
	calls []string
}

func (m *mockProvisionedIndex) EnsureIndex(context.Context) error {
	m.calls = append(m.calls, "ensure")
	return nil
}

func (m *mockProvisionedIndex) DropIndex(context.Context) error {
	m.calls = append(m.calls, "drop")
	return nil
}

// --- LLM ---

type mockLLM struct {
	mu       sync.Mutex
	reply    string
	err      error
	pingErr  error
	calls    int
	messages []driven.ChatMessage
	opts     driven.ChatOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.ChatOptions) (string, error) {
	return m.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: prompt}}, opts)
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.messages = messages
	m.opts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return m.pingErr }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockLLM) userMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.messages {
		if msg.Role == driven.RoleUser {
			return msg.Content
		}
	}
	return ""
}

// --- Prompts ---

type mockPromptStore struct {
	prompts map[string]string
	err     error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	p, ok := m.prompts[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (m *mockPromptStore) Reload() {}

// --- Corpus and pipeline ---

type mockCorpus struct {
	docs []domain.Document
	err  error
}

func (m *mockCorpus) List(context.Context) ([]domain.Document, error) {
	return m.docs, m.err
}

// mockPipeline emits one passage per paragraph.
type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, doc domain.Document) ([]domain.Passage, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Passage
	for _, para := range strings.Split(doc.Content, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		out = append(out, domain.NewPassage(doc.SourceKey, len(out), para))
	}
	return out, nil
}

type mockPacer struct {
	waits int
	err   error
}

func (m *mockPacer) Wait(context.Context) error {
	m.waits++
	return m.err
}

// --- Config store ---

type mockConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
	saves  int
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func (m *mockConfigStore) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *mockConfigStore) GetDuration(key string) time.Duration {
	v, _ := m.Get(key)
	if s, ok := v.(string); ok {
		d, _ := time.ParseDuration(s)
		return d
	}
	return 0
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	s, _ := v.([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Save() error {
	m.saves++
	return nil
}

func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "" }

var errBoom = errors.New("boom")

// --- Scheduler ---

type mockSchedulerStore struct {
	mu     sync.Mutex
	jobs   map[string]*domain.ScheduledJob
	runs   []domain.JobRun
	pruned int
}

func newMockSchedulerStore() *mockSchedulerStore {
	return &mockSchedulerStore{jobs: make(map[string]*domain.ScheduledJob)}
}

func (m *mockSchedulerStore) GetJob(_ context.Context, id string) (*domain.ScheduledJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, nil
	}
	jobCopy := *job
	return &jobCopy, nil
}

func (m *mockSchedulerStore) ListJobs(context.Context) ([]domain.ScheduledJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]domain.ScheduledJob, 0, len(m.jobs))
	for _, t := range m.jobs {
		jobs = append(jobs, *t)
	}
	return jobs, nil
}

func (m *mockSchedulerStore) SaveJob(_ context.Context, job *domain.ScheduledJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobCopy := *job
	m.jobs[job.ID] = &jobCopy
	return nil
}

func (m *mockSchedulerStore) RecordRun(_ context.Context, run *domain.JobRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockSchedulerStore) RunHistory(_ context.Context, id string, limit int) ([]domain.JobRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.JobRun
	for i := len(m.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.runs[i].JobID == id {
			out = append(out, m.runs[i])
		}
	}
	return out, nil
}

func (m *mockSchedulerStore) PruneHistory(_ context.Context, keep int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pruned = keep
	return nil
}

func (m *mockSchedulerStore) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.runs)
}

// mockIngest blocks each Run until release is closed, when set.
type mockIngest struct {
	mu      sync.Mutex
	runs    int
	release chan struct{}
	started chan struct{}
	err     error
}

func (m *mockIngest) Run(ctx context.Context, _ domain.IngestOptions) (*domain.IngestReport, error) {
	m.mu.Lock()
	m.runs++
	m.mu.Unlock()
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.release != nil {
		select {
		case <-m.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return &domain.IngestReport{}, m.err
	}
	return &domain.IngestReport{Passages: 5, Upsert: domain.UpsertResult{Submitted: 5, Accepted: 4}}, nil
}

func (m *mockIngest) Prepare(context.Context, domain.IngestOptions) ([]domain.Passage, *domain.IngestReport, error) {
	return nil, &domain.IngestReport{}, nil
}

func (m *mockIngest) Upload(context.Context, []domain.Passage) (domain.UpsertResult, error) {
	return domain.UpsertResult{}, nil
}

func (m *mockIngest) runCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs
}
