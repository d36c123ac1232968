package providerhttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

func newClient(url string) (*Client, string) {
	return &Client{
		HTTP:     http.DefaultClient,
		Provider: "test",
		Failure:  domain.ErrEmbeddingFailure,
		Headers:  map[string]string{"api-key": "secret"},
	}, url
}

func TestDo_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write([]byte(`{"value": 42}`))
	}))
	defer srv.Close()

	c, url := newClient(srv.URL)
	var out struct {
		Value int `json:"value"`
	}
	err := c.Do(context.Background(), http.MethodPost, url, map[string]string{"a": "b"}, &out)

	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
}

func TestDo_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		retryable bool
		extra     error
	}{
		{http.StatusTooManyRequests, true, domain.ErrRateLimited},
		{http.StatusServiceUnavailable, true, domain.ErrTransient},
		{http.StatusUnauthorized, false, domain.ErrUnauthorized},
		{http.StatusBadRequest, false, nil},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			defer srv.Close()

			c, url := newClient(srv.URL)
			err := c.Do(context.Background(), http.MethodGet, url, nil, nil)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
			assert.Contains(t, err.Error(), "test error (status")
			assert.Equal(t, tt.retryable, domain.IsRetryable(err))
			if tt.extra != nil {
				assert.ErrorIs(t, err, tt.extra)
			}
		})
	}
}

func TestStatusError_TruncatesBody(t *testing.T) {
	body := make([]byte, 2000)
	for i := range body {
		body[i] = 'x'
	}
	err := StatusError("p", domain.ErrSearchFailure, 400, body)
	assert.Less(t, len(err.Error()), 700)
}

func TestTransportError_CancelledIsNotRetryable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := TransportError(ctx, "p", domain.ErrGenerationFailure, errors.New("dial failed"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, domain.ErrGenerationFailure)
	assert.False(t, domain.IsRetryable(err))

	err = TransportError(context.Background(), "p", domain.ErrGenerationFailure, errors.New("dial failed"))
	assert.True(t, domain.IsRetryable(err))
}
