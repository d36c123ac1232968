package services

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedAPIVersion  = "embedding.api_version"
	keyEmbedDims        = "embedding.dimensions"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMAPIVersion    = "llm.api_version"
	keyVectorBackend    = "vector_index.backend"
	keyVectorEndpoint   = "vector_index.endpoint"
	keyVectorAPIKey     = "vector_index.api_key"
	keyVectorIndexName  = "vector_index.index_name"
	keyVectorDims       = "vector_index.dimensions"
	keyVectorDataDir    = "vector_index.data_dir"
	keyVectorDSN        = "vector_index.dsn"
	keyChunkSize        = "chunking.chunk_size"
	keyChunkOverlap     = "chunking.overlap"
	keyGenMaxTokens     = "generation.max_tokens"
	keyGenTemperature   = "generation.temperature"
	keyGenMaxContext    = "generation.max_context_chars"
	keyIngestCorpusDir  = "ingest.corpus_dir"
	keyIngestRecursive  = "ingest.recursive"
	keyIngestInterval   = "ingest.embed_interval"
	keyResilEnabled     = "resilience.enabled"
	keyResilMaxRetries  = "resilience.max_retries"
	keyResilMaxElapsed  = "resilience.max_elapsed"
	keyCacheRedisAddr   = "cache.redis_addr"
	keyCacheRedisPass   = "cache.redis_password"
	keyCacheRedisDB     = "cache.redis_db"
	keyCacheTTL         = "cache.ttl"
	keyServerAddr       = "server.addr"
	keyServerKeyHashes  = "server.api_key_hashes"
	keyServerJWTSecret  = "server.jwt_secret"
	keyTelegramToken    = "telegram.token"
	keyPipelineProcs    = "pipeline.processors"
	keySchedulerEnabled = "scheduler.enabled"
)

// defaultOllamaURL is used when a local provider has no base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, in which case provider checks always pass.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings, filling gaps with defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			APIVersion: s.getString(keyEmbedAPIVersion, d.Embedding.APIVersion),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		LLM: domain.LLMSettings{
			Provider:   s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:      s.configStore.GetString(keyLLMModel),
			BaseURL:    s.configStore.GetString(keyLLMBaseURL),
			APIKey:     s.configStore.GetString(keyLLMAPIKey),
			APIVersion: s.getString(keyLLMAPIVersion, d.LLM.APIVersion),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getBackend(d.VectorIndex.Backend),
			Endpoint:   s.configStore.GetString(keyVectorEndpoint),
			APIKey:     s.configStore.GetString(keyVectorAPIKey),
			IndexName:  s.getString(keyVectorIndexName, d.VectorIndex.IndexName),
			Dimensions: s.getInt(keyVectorDims, d.VectorIndex.Dimensions),
			DataDir:    s.configStore.GetString(keyVectorDataDir),
			DSN:        s.configStore.GetString(keyVectorDSN),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, d.Chunking.ChunkSize),
			Overlap:   s.getIntAllowZero(keyChunkOverlap, d.Chunking.Overlap),
		},
		Generation: domain.GenerationSettings{
			MaxTokens:       s.getInt(keyGenMaxTokens, d.Generation.MaxTokens),
			Temperature:     s.getFloat(keyGenTemperature, d.Generation.Temperature),
			MaxContextChars: s.configStore.GetInt(keyGenMaxContext),
		},
		Ingest: domain.IngestSettings{
			CorpusDir:     s.getString(keyIngestCorpusDir, d.Ingest.CorpusDir),
			Recursive:     s.getBool(keyIngestRecursive, d.Ingest.Recursive),
			EmbedInterval: s.getDurationAllowZero(keyIngestInterval, d.Ingest.EmbedInterval),
		},
		Resilience: domain.ResilienceSettings{
			Enabled:    s.getBool(keyResilEnabled, d.Resilience.Enabled),
			MaxRetries: s.getInt(keyResilMaxRetries, d.Resilience.MaxRetries),
			MaxElapsed: s.getDuration(keyResilMaxElapsed, d.Resilience.MaxElapsed),
		},
		Cache: domain.CacheSettings{
			RedisAddr:     s.configStore.GetString(keyCacheRedisAddr),
			RedisPassword: s.configStore.GetString(keyCacheRedisPass),
			RedisDB:       s.configStore.GetInt(keyCacheRedisDB),
			TTL:           s.getDuration(keyCacheTTL, d.Cache.TTL),
		},
		Server: domain.ServerSettings{
			Addr:         s.getString(keyServerAddr, d.Server.Addr),
			APIKeyHashes: s.configStore.GetStringSlice(keyServerKeyHashes),
			JWTSecret:    s.configStore.GetString(keyServerJWTSecret),
		},
		Telegram: domain.TelegramSettings{
			Token: s.configStore.GetString(keyTelegramToken),
		},
	}

	if settings.Embedding.Model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if settings.Embedding.Provider.IsLocal() && settings.Embedding.BaseURL == "" {
		settings.Embedding.BaseURL = defaultOllamaURL
	}
	if settings.LLM.Provider.IsLocal() && settings.LLM.BaseURL == "" {
		settings.LLM.BaseURL = defaultOllamaURL
	}
	if settings.Embedding.Dimensions == 0 {
		settings.Embedding.Dimensions = settings.VectorIndex.Dimensions
	}

	settings.Pipeline = s.GetPipelineConfig(settings.Chunking)
	settings.Scheduler = s.GetSchedulerConfig()

	return settings, nil
}

// Save persists application settings.
// API keys are only written when set so an empty form never wipes them.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
		skip  bool
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String(), false},
		{keyEmbedModel, settings.Embedding.Model, false},
		{keyEmbedBaseURL, settings.Embedding.BaseURL, false},
		{keyEmbedAPIKey, settings.Embedding.APIKey, settings.Embedding.APIKey == ""},
		{keyEmbedAPIVersion, settings.Embedding.APIVersion, settings.Embedding.APIVersion == ""},
		{keyEmbedDims, settings.Embedding.Dimensions, settings.Embedding.Dimensions == 0},
		{keyLLMProvider, settings.LLM.Provider.String(), false},
		{keyLLMModel, settings.LLM.Model, false},
		{keyLLMBaseURL, settings.LLM.BaseURL, false},
		{keyLLMAPIKey, settings.LLM.APIKey, settings.LLM.APIKey == ""},
		{keyLLMAPIVersion, settings.LLM.APIVersion, settings.LLM.APIVersion == ""},
		{keyVectorBackend, settings.VectorIndex.Backend.String(), false},
		{keyVectorEndpoint, settings.VectorIndex.Endpoint, settings.VectorIndex.Endpoint == ""},
		{keyVectorAPIKey, settings.VectorIndex.APIKey, settings.VectorIndex.APIKey == ""},
		{keyVectorIndexName, settings.VectorIndex.IndexName, false},
		{keyVectorDims, settings.VectorIndex.Dimensions, false},
		{keyVectorDataDir, settings.VectorIndex.DataDir, settings.VectorIndex.DataDir == ""},
		{keyVectorDSN, settings.VectorIndex.DSN, settings.VectorIndex.DSN == ""},
		{keyChunkSize, settings.Chunking.ChunkSize, false},
		{keyChunkOverlap, settings.Chunking.Overlap, false},
		{keyGenMaxTokens, settings.Generation.MaxTokens, false},
		{keyGenTemperature, settings.Generation.Temperature, false},
		{keyGenMaxContext, settings.Generation.MaxContextChars, false},
		{keyIngestCorpusDir, settings.Ingest.CorpusDir, false},
		{keyIngestRecursive, settings.Ingest.Recursive, false},
		{keyIngestInterval, settings.Ingest.EmbedInterval.String(), false},
	}

	for _, v := range values {
		if v.skip {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}
	if provider.RequiresBaseURL() && baseURL == "" {
		return fmt.Errorf("endpoint required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, baseURL)
	settings.Embedding.APIKey = apiKey

	if d, ok := domain.EmbeddingDimensions()[settings.Embedding.Model]; ok {
		settings.Embedding.Dimensions = d
		settings.VectorIndex.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, baseURL, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}
	if provider.RequiresBaseURL() && baseURL == "" {
		return fmt.Errorf("endpoint required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, baseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetVectorBackend selects where passages are stored.
func (s *SettingsService) SetVectorBackend(backend domain.VectorBackend) error {
	if !backend.IsValid() {
		return fmt.Errorf("invalid vector backend: %s", backend)
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.VectorIndex.Backend = backend
	return s.Save(settings)
}

// ValidateEmbeddingConfig pings the configured embedding provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig pings the configured LLM provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Validate checks that the current settings can answer questions.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrInvalidConfig, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrInvalidConfig, settings.LLM.Provider)
	}

	vi := settings.VectorIndex
	switch vi.Backend {
	case domain.VectorBackendAzure:
		if vi.Endpoint == "" || vi.APIKey == "" {
			return fmt.Errorf("%w: azure vector backend needs endpoint and api_key", domain.ErrInvalidConfig)
		}
	case domain.VectorBackendPgvector:
		if vi.DSN == "" {
			return fmt.Errorf("%w: pgvector backend needs a dsn", domain.ErrInvalidConfig)
		}
	}

	if settings.Embedding.Dimensions != vi.Dimensions {
		return fmt.Errorf("%w: embedding dimensions %d do not match index dimensions %d",
			domain.ErrInvalidConfig, settings.Embedding.Dimensions, vi.Dimensions)
	}

	c := settings.Chunking
	if c.ChunkSize <= 0 || c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidConfig, c.Overlap, c.ChunkSize)
	}

	return nil
}

// typedKeys are parsed before storing so numeric and boolean reads see the
// right type. Everything else, including secrets, is stored verbatim.
var typedKeys = map[string]func(string) (any, error){
	keyEmbedDims:        parseInt,
	keyVectorDims:       parseInt,
	keyChunkSize:        parseInt,
	keyChunkOverlap:     parseInt,
	keyGenMaxTokens:     parseInt,
	keyGenMaxContext:    parseInt,
	keyResilMaxRetries:  parseInt,
	keyCacheRedisDB:     parseInt,
	keyGenTemperature:   parseFloat,
	keyIngestRecursive:  parseBool,
	keyResilEnabled:     parseBool,
	keySchedulerEnabled: parseBool,
	keyServerKeyHashes:  parseList,
	keyPipelineProcs:    parseList,
}

var stringKeys = []string{
	keyEmbedProvider, keyEmbedModel, keyEmbedBaseURL, keyEmbedAPIKey, keyEmbedAPIVersion,
	keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMAPIVersion,
	keyVectorBackend, keyVectorEndpoint, keyVectorAPIKey, keyVectorIndexName, keyVectorDataDir, keyVectorDSN,
	keyIngestCorpusDir, keyIngestInterval, keyResilMaxElapsed,
	keyCacheRedisAddr, keyCacheRedisPass, keyCacheTTL,
	keyServerAddr, keyServerJWTSecret, keyTelegramToken,
}

// Set stores one setting by its config key and persists it.
// Keys under pipeline. and scheduler. are accepted as processor and job options.
func (s *SettingsService) Set(key, value string) error {
	parse, typed := typedKeys[key]
	switch {
	case typed:
		v, err := parse(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, key, err)
		}
		if err := s.configStore.Set(key, v); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	case slices.Contains(stringKeys, key):
		if err := s.configStore.Set(key, value); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	case isOptionKey(key):
		if err := s.configStore.Set(key, parseScalar(value)); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidConfig, key)
	}
	return s.configStore.Save()
}

func parseInt(v string) (any, error) {
	return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
}

func parseFloat(v string) (any, error) {
	return strconv.ParseFloat(strings.TrimSpace(v), 64)
}

func parseBool(v string) (any, error) {
	return strconv.ParseBool(strings.TrimSpace(v))
}

func parseList(v string) (any, error) {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}

// isOptionKey matches pipeline.<processor>.<option> and scheduler.<job>.<option>.
func isOptionKey(key string) bool {
	parts := strings.Split(key, ".")
	return len(parts) == 3 && (parts[0] == "pipeline" || parts[0] == "scheduler") &&
		parts[1] != "" && parts[2] != ""
}

// parseScalar types processor and job options, which may be numbers or booleans.
func parseScalar(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Chunker options come from the chunking settings unless overridden
// under pipeline.chunker.
func (s *SettingsService) GetPipelineConfig(chunking domain.ChunkingSettings) domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	cfg.ProcessorConfigs["chunker"] = map[string]any{
		"chunk_size": chunking.ChunkSize,
		"overlap":    chunking.Overlap,
	}

	if processors := s.configStore.GetStringSlice(keyPipelineProcs); len(processors) > 0 {
		cfg.Processors = processors
	}

	for _, name := range cfg.Processors {
		loaded := s.loadProcessorConfig("pipeline." + name + ".")
		if len(loaded) == 0 {
			continue
		}
		existing := cfg.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range loaded {
			existing[k] = v
		}
		cfg.ProcessorConfigs[name] = existing
	}

	return cfg
}

// loadProcessorConfig loads known processor keys with a given prefix.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range []string{"chunk_size", "overlap", "max_chars"} {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
}

// GetSchedulerConfig returns the scheduler configuration.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	cfg := domain.DefaultSchedulerConfig()

	if _, exists := s.configStore.Get(keySchedulerEnabled); exists {
		cfg.Enabled = s.configStore.GetBool(keySchedulerEnabled)
	}

	jobKeys := map[string]string{
		domain.JobCorpusReindex: "corpus_reindex",
	}
	for id, section := range jobKeys {
		prefix := "scheduler." + section + "."
		job := cfg.Jobs[id]
		if _, exists := s.configStore.Get(prefix + "enabled"); exists {
			job.Enabled = s.configStore.GetBool(prefix + "enabled")
		}
		if schedule := s.configStore.GetString(prefix + "schedule"); schedule != "" {
			job.Schedule = schedule
		}
		cfg.Jobs[id] = job
	}

	return cfg
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

func baseURLFor(provider domain.AIProvider, baseURL string) string {
	if baseURL != "" {
		return baseURL
	}
	if provider.IsLocal() {
		return defaultOllamaURL
	}
	return ""
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val := s.configStore.GetInt(key); val != 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := s.configStore.GetDuration(key); val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDurationAllowZero(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetDuration(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
