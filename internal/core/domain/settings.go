package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderAzure is Azure OpenAI. Model names are deployment names.
	AIProviderAzure AIProvider = "azure"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderAnthropic is Anthropic cloud API. LLM only.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderAzure, AIProviderOpenAI, AIProviderOllama, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderAzure || p == AIProviderOpenAI || p == AIProviderAnthropic
}

// RequiresBaseURL returns true if the provider has no usable default endpoint.
func (p AIProvider) RequiresBaseURL() bool {
	return p == AIProviderAzure
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderAzure:
		return "Azure OpenAI (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies where passages and their embeddings are stored.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendAzure is Azure AI Search.
	VectorBackendAzure VectorBackend = "azure"

	// VectorBackendSQLite is a local SQLite file with exact cosine search.
	VectorBackendSQLite VectorBackend = "sqlite"

	// VectorBackendMemory keeps everything in process. Lost on exit.
	VectorBackendMemory VectorBackend = "memory"

	// VectorBackendChromem is an embedded chromem-go database.
	VectorBackendChromem VectorBackend = "chromem"

	// VectorBackendPgvector is PostgreSQL with the pgvector extension.
	VectorBackendPgvector VectorBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendAzure, VectorBackendSQLite, VectorBackendMemory, VectorBackendChromem, VectorBackendPgvector:
		return true
	default:
		return false
	}
}

// IsRemote returns true if the backend is a network service.
func (b VectorBackend) IsRemote() bool {
	return b == VectorBackendAzure || b == VectorBackendPgvector
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendAzure:
		return "Azure AI Search (HNSW, cosine)"
	case VectorBackendSQLite:
		return "SQLite (local file, exact cosine)"
	case VectorBackendMemory:
		return "In-memory (ephemeral)"
	case VectorBackendChromem:
		return "chromem-go (embedded, persistent)"
	case VectorBackendPgvector:
		return "PostgreSQL + pgvector"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name, or the deployment name for Azure.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// APIVersion is the Azure OpenAI API version.
	APIVersion string

	// Dimensions is the vector size the model produces.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	if e.Provider.RequiresBaseURL() && e.BaseURL == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the chat model name, or the deployment name for Azure.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// APIVersion is the Azure OpenAI API version.
	APIVersion string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	if l.Provider.RequiresBaseURL() && l.BaseURL == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds vector backend configuration.
type VectorIndexSettings struct {
	// Backend selects the store.
	Backend VectorBackend

	// Endpoint is the Azure AI Search service URL.
	Endpoint string

	// APIKey is the Azure AI Search admin key.
	APIKey string

	// IndexName is the index, collection or table name.
	IndexName string

	// Dimensions is the embedding vector size the index is built for.
	Dimensions int

	// DataDir holds local backends (sqlite, chromem).
	DataDir string

	// DSN is the PostgreSQL connection string for pgvector.
	DSN string
}

// ChunkingSettings holds word-window chunker configuration.
type ChunkingSettings struct {
	// ChunkSize is the window length in words.
	ChunkSize int

	// Overlap is the number of words shared by consecutive windows.
	Overlap int
}

// GenerationSettings bounds answer generation.
type GenerationSettings struct {
	// MaxTokens caps the completion length.
	MaxTokens int

	// Temperature is kept low for grounded answers.
	Temperature float64

	// MaxContextChars caps the assembled context. Zero means unlimited.
	MaxContextChars int
}

// IngestSettings controls the offline ingestion job.
type IngestSettings struct {
	// CorpusDir is the directory of source documents.
	CorpusDir string

	// Recursive walks subdirectories of CorpusDir.
	Recursive bool

	// EmbedInterval is the minimum delay between embedding calls.
	EmbedInterval time.Duration
}

// ResilienceSettings controls retry decorators around providers.
type ResilienceSettings struct {
	// Enabled wraps providers with retrying decorators.
	Enabled bool

	// MaxRetries bounds the number of retries per call.
	MaxRetries int

	// MaxElapsed bounds the total time spent retrying a call.
	MaxElapsed time.Duration
}

// CacheSettings configures the optional query-embedding cache.
type CacheSettings struct {
	// RedisAddr enables the cache when set, e.g. "localhost:6379".
	RedisAddr string

	// RedisPassword is the Redis AUTH password.
	RedisPassword string

	// RedisDB is the Redis database number.
	RedisDB int

	// TTL is how long cached embeddings live.
	TTL time.Duration
}

// Enabled returns true if a cache address is configured.
func (c CacheSettings) Enabled() bool {
	return c.RedisAddr != ""
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string

	// APIKeyHashes are hex sha256 digests of accepted API keys.
	APIKeyHashes []string

	// JWTSecret enables HS256 bearer tokens when set.
	JWTSecret string
}

// TelegramSettings configures the Telegram bot.
type TelegramSettings struct {
	// Token is the Bot API token from BotFather.
	Token string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorIndex VectorIndexSettings
	Chunking    ChunkingSettings
	Generation  GenerationSettings
	Ingest      IngestSettings
	Resilience  ResilienceSettings
	Cache       CacheSettings
	Server      ServerSettings
	Telegram    TelegramSettings
	Pipeline    PipelineConfig
	Scheduler   SchedulerConfig
}

// Defaults matching the reference deployment.
const (
	DefaultChunkSize       = 500
	DefaultChunkOverlap    = 50
	DefaultMaxTokens       = 800
	DefaultTemperature     = 0.3
	DefaultDimensions      = 1536
	DefaultIndexName       = "python-docs-index"
	DefaultAzureAPIVersion = "2024-02-01"
	DefaultEmbedInterval   = 12 * time.Second
	DefaultServerAddr      = ":8000"
	DefaultCacheTTL        = 24 * time.Hour
)

// DefaultAppSettings returns settings with sensible defaults.
// Provider credentials are left empty.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:   AIProviderAzure,
			APIVersion: DefaultAzureAPIVersion,
			Dimensions: DefaultDimensions,
		},
		LLM: LLMSettings{
			Provider:   AIProviderAzure,
			APIVersion: DefaultAzureAPIVersion,
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendSQLite,
			IndexName:  DefaultIndexName,
			Dimensions: DefaultDimensions,
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Generation: GenerationSettings{
			MaxTokens:   DefaultMaxTokens,
			Temperature: DefaultTemperature,
		},
		Ingest: IngestSettings{
			CorpusDir:     "python_docs",
			EmbedInterval: DefaultEmbedInterval,
		},
		Resilience: ResilienceSettings{
			MaxRetries: 3,
			MaxElapsed: time.Minute,
		},
		Cache: CacheSettings{
			TTL: DefaultCacheTTL,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
		Pipeline:  DefaultPipelineConfig(),
		Scheduler: DefaultSchedulerConfig(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderAzure,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// AllLLMProviders returns providers that support chat completion.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderAzure,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderAnthropic,
	}
}

// AllVectorBackends returns every supported backend.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendAzure,
		VectorBackendSQLite,
		VectorBackendMemory,
		VectorBackendChromem,
		VectorBackendPgvector,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderAzure:  "text-embedding-ada-002",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderAzure:     "gpt-35-turbo",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderOllama:    "llama3.2",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config so new processors need no struct changes.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig runs the word-window chunker with reference defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": DefaultChunkSize,
				"overlap":    DefaultChunkOverlap,
			},
		},
	}
}
