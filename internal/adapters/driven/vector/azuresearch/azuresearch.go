// Package azuresearch implements the vector index on Azure AI Search using
// its REST API.
package azuresearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/ragdocs/internal/adapters/driven/providerhttp"
	"github.com/custodia-labs/ragdocs/internal/core/domain"
	"github.com/custodia-labs/ragdocs/internal/core/ports/driven"
)

var (
	_ driven.VectorIndex      = (*Index)(nil)
	_ driven.IndexProvisioner = (*Index)(nil)
)

// Service constants.
const (
	APIVersion     = "2023-11-01"
	DefaultTimeout = 30 * time.Second
	MaxBatchSize   = 1000

	vectorField   = "embedding"
	selectFields  = "id,source_file,content,chunk_index"
	hnswAlgorithm = "myHnsw"
	hnswProfile   = "myHnswProfile"
)

// Config holds connection settings for one index.
type Config struct {
	// Endpoint is the service URL, e.g. https://mysearch.search.windows.net.
	Endpoint string

	// APIKey is an admin key. Query keys cannot upload or provision.
	APIKey string

	// IndexName is the target index (default: python-docs-index).
	IndexName string

	// Dimensions is the vector size used when provisioning.
	Dimensions int

	// Timeout is the per-request timeout (default: 30s).
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Index is an Azure AI Search index holding passages.
type Index struct {
	endpoint   string
	name       string
	dimensions int
	httpClient *http.Client
	apiKey     string
}

// New creates a client for an existing or future index.
func New(cfg Config) (*Index, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: azure search endpoint is required", domain.ErrInvalidConfig)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: azure search API key is required", domain.ErrInvalidConfig)
	}
	if cfg.IndexName == "" {
		cfg.IndexName = domain.DefaultIndexName
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.DefaultDimensions
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Index{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		name:       cfg.IndexName,
		dimensions: cfg.Dimensions,
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
	}, nil
}

func (x *Index) client(failure error) *providerhttp.Client {
	return &providerhttp.Client{
		HTTP:     x.httpClient,
		Provider: "azure search",
		Failure:  failure,
		Headers:  map[string]string{"api-key": x.apiKey},
	}
}

func (x *Index) url(suffix string) string {
	return fmt.Sprintf("%s/indexes/%s%s?api-version=%s", x.endpoint, url.PathEscape(x.name), suffix, APIVersion)
}

// document is the stored shape of a passage.
type document struct {
	Action        string    `json:"@search.action,omitempty"`
	ID            string    `json:"id"`
	SourceFile    string    `json:"source_file"`
	Content       string    `json:"content"`
	ChunkIndex    int       `json:"chunk_index"`
	ContentLength int       `json:"content_length"`
	Embedding     []float32 `json:"embedding,omitempty"`
}

type indexBatch struct {
	Value []document `json:"value"`
}

type indexResponse struct {
	Value []struct {
		Key          string `json:"key"`
		Status       bool   `json:"status"`
		ErrorMessage string `json:"errorMessage"`
	} `json:"value"`
}

// Upsert uploads passages in batches of MaxBatchSize. Accepted counts the
// per-document statuses the service reports as successful. A batch that
// fails outright stops the upload and returns the tally so far. Passages
// without an embedding of the index dimension are not sent.
func (x *Index) Upsert(ctx context.Context, passages []domain.Passage) (domain.UpsertResult, error) {
	result := domain.UpsertResult{Submitted: len(passages)}
	c := x.client(domain.ErrVectorIndexUnavailable)

	passages = slices.DeleteFunc(slices.Clone(passages), func(p domain.Passage) bool {
		return !p.Searchable(x.dimensions)
	})
	for start := 0; start < len(passages); start += MaxBatchSize {
		end := min(start+MaxBatchSize, len(passages))

		batch := indexBatch{Value: make([]document, 0, end-start)}
		for _, p := range passages[start:end] {
			batch.Value = append(batch.Value, document{
				Action:        "upload",
				ID:            p.ID,
				SourceFile:    p.SourceKey,
				Content:       p.Content,
				ChunkIndex:    p.ChunkIndex,
				ContentLength: p.ContentLength,
				Embedding:     p.Embedding,
			})
		}

		var resp indexResponse
		// 207 Multi-Status is a partial success and still decodes.
		if err := c.Do(ctx, http.MethodPost, x.url("/docs/index"), batch, &resp); err != nil {
			return result, fmt.Errorf("upload batch %d-%d: %w", start, end, err)
		}
		for _, r := range resp.Value {
			if r.Status {
				result.Accepted++
			}
		}
	}
	return result, nil
}

type vectorQuery struct {
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
	Kind   string    `json:"kind"`
}

type searchRequest struct {
	Count         bool          `json:"count"`
	Top           int           `json:"top"`
	Select        string        `json:"select"`
	VectorQueries []vectorQuery `json:"vectorQueries"`
}

type searchResponse struct {
	Value []struct {
		Score      float64 `json:"@search.score"`
		ID         string  `json:"id"`
		SourceFile string  `json:"source_file"`
		Content    string  `json:"content"`
		ChunkIndex int     `json:"chunk_index"`
	} `json:"value"`
}

// Search runs a pure vector query. Results keep the service's order.
func (x *Index) Search(ctx context.Context, query []float32, k int) ([]domain.RetrievedPassage, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1", domain.ErrInvalidInput)
	}

	req := searchRequest{
		Count:  true,
		Top:    k,
		Select: selectFields,
		VectorQueries: []vectorQuery{{
			Vector: query,
			K:      k,
			Fields: vectorField,
			Kind:   "vector",
		}},
	}

	var resp searchResponse
	if err := x.client(domain.ErrSearchFailure).Do(ctx, http.MethodPost, x.url("/docs/search"), req, &resp); err != nil {
		return nil, err
	}

	n := min(len(resp.Value), k)
	out := make([]domain.RetrievedPassage, n)
	for i, v := range resp.Value[:n] {
		p := domain.NewPassage(v.SourceFile, v.ChunkIndex, v.Content)
		if v.ID != "" {
			p.ID = v.ID
		}
		out[i] = domain.RetrievedPassage{Passage: p, Score: v.Score, Rank: i + 1}
	}
	return out, nil
}

type statsResponse struct {
	DocumentCount   int64 `json:"documentCount"`
	StorageSize     int64 `json:"storageSize"`
	VectorIndexSize int64 `json:"vectorIndexSize"`
}

// Stats reads the index statistics endpoint.
func (x *Index) Stats(ctx context.Context) (domain.IndexStats, error) {
	var resp statsResponse
	if err := x.client(domain.ErrVectorIndexUnavailable).Do(ctx, http.MethodGet, x.url("/stats"), nil, &resp); err != nil {
		return domain.IndexStats{}, fmt.Errorf("index stats: %w", err)
	}
	return domain.IndexStats{
		DocumentCount:   resp.DocumentCount,
		StorageSize:     resp.StorageSize,
		VectorIndexSize: resp.VectorIndexSize,
	}, nil
}

// EnsureIndex creates or updates the index definition.
func (x *Index) EnsureIndex(ctx context.Context) error {
	if err := x.client(domain.ErrInvalidConfig).Do(ctx, http.MethodPut, x.url(""), Schema(x.name, x.dimensions), nil); err != nil {
		return fmt.Errorf("create index %s: %w", x.name, err)
	}
	return nil
}

// DropIndex deletes the index. A missing index is not an error.
func (x *Index) DropIndex(ctx context.Context) error {
	err := x.client(domain.ErrNotFound).Do(ctx, http.MethodDelete, x.url(""), nil, nil)
	if err != nil && !isStatus(err, http.StatusNotFound) {
		return fmt.Errorf("drop index %s: %w", x.name, err)
	}
	return nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Schema returns the index definition: passage fields plus an HNSW cosine
// vector field of the given dimension.
func Schema(name string, dimensions int) map[string]any {
	return map[string]any{
		"name": name,
		"fields": []map[string]any{
			{"name": "id", "type": "Edm.String", "key": true, "filterable": true},
			{"name": "content", "type": "Edm.String", "searchable": true},
			{"name": "source_file", "type": "Edm.String", "filterable": true, "facetable": true},
			{"name": "chunk_index", "type": "Edm.Int32", "filterable": true, "sortable": true},
			{"name": "content_length", "type": "Edm.Int32", "filterable": true},
			{
				"name":                vectorField,
				"type":                "Collection(Edm.Single)",
				"searchable":          true,
				"dimensions":          dimensions,
				"vectorSearchProfile": hnswProfile,
			},
		},
		"vectorSearch": map[string]any{
			"algorithms": []map[string]any{{
				"name": hnswAlgorithm,
				"kind": "hnsw",
				"hnswParameters": map[string]any{
					"m":              4,
					"efConstruction": 400,
					"efSearch":       500,
					"metric":         "cosine",
				},
			}},
			"profiles": []map[string]any{{
				"name":      hnswProfile,
				"algorithm": hnswAlgorithm,
			}},
		},
	}
}

// isStatus reports whether err came from a response with the given status.
func isStatus(err error, status int) bool {
	return err != nil && strings.Contains(err.Error(), fmt.Sprintf("(status %d)", status))
}

