package azure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

type fakeEmbedder struct {
	err   error
	texts []string
}

func (f *fakeEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.5, 0.5}, nil
}

func TestNewEmbeddingService_RequiresEndpointAndKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{APIKey: "k"})
	assert.Error(t, err)

	_, err = NewEmbeddingService(Config{Endpoint: "https://x.openai.azure.com"})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{Endpoint: "https://x.openai.azure.com/", APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, "text-embedding-ada-002", svc.ModelName())
	assert.Equal(t, domain.DefaultDimensions, svc.Dimensions())
}

func TestEmbed(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := newWithEmbedder(fake, "ada", 2)

	v, err := svc.Embed(context.Background(), "line one\nline two")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, v)
	assert.Equal(t, []string{"line one\nline two"}, fake.texts)
}

func TestEmbedBatch(t *testing.T) {
	svc := newWithEmbedder(&fakeEmbedder{}, "ada", 2)

	vs, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, vs, 3)

	vs, err = svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vs)
}

func TestEmbed_ClassifiesErrors(t *testing.T) {
	svc := newWithEmbedder(&fakeEmbedder{err: errors.New("API returned unexpected status code: 429")}, "ada", 2)

	_, err := svc.Embed(context.Background(), "q")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.True(t, domain.IsRetryable(err))
}

func TestPing(t *testing.T) {
	fake := &fakeEmbedder{}
	svc := newWithEmbedder(fake, "ada", 2)
	require.NoError(t, svc.Ping(context.Background()))

	fake.err = errors.New("status code: 401")
	err := svc.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
