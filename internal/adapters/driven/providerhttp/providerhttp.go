// Package providerhttp holds the JSON-over-HTTP plumbing shared by the
// provider adapters and maps HTTP failures onto domain error categories.
package providerhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/custodia-labs/ragdocs/internal/core/domain"
)

// maxErrorBody bounds how much of an error response is kept in messages.
const maxErrorBody = 512

// Client issues JSON requests on behalf of one provider.
type Client struct {
	// HTTP is the underlying client. Timeouts are configured here.
	HTTP *http.Client

	// Provider names the service in error messages, e.g. "openai".
	Provider string

	// Failure is the stage sentinel wrapped into every error,
	// e.g. domain.ErrEmbeddingFailure.
	Failure error

	// Headers are set on every request.
	Headers map[string]string
}

// Do sends in as JSON (nil sends no body) and decodes a 2xx response into out
// (nil discards it).
func (c *Client) Do(ctx context.Context, method, url string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: marshal request: %w", c.Failure, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", c.Failure, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return TransportError(ctx, c.Provider, c.Failure, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return TransportError(ctx, c.Provider, c.Failure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return StatusError(c.Provider, c.Failure, resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %w", c.Failure, c.Provider, err)
	}
	return nil
}

// StatusError builds the error for a non-2xx response.
// 429 adds domain.ErrRateLimited, 5xx and 408 add domain.ErrTransient,
// 401 and 403 add domain.ErrUnauthorized.
func StatusError(provider string, failure error, status int, body []byte) error {
	msg := string(body)
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	base := fmt.Errorf("%s error (status %d): %s", provider, status, msg)

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: %w", failure, domain.ErrRateLimited, base)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %w: %w", failure, domain.ErrUnauthorized, base)
	case status >= 500 || status == http.StatusRequestTimeout:
		return fmt.Errorf("%w: %w: %w", failure, domain.ErrTransient, base)
	default:
		return fmt.Errorf("%w: %w", failure, base)
	}
}

// TransportError wraps a failure to reach the provider.
// When ctx is done the caller gave up, so the error is not marked transient.
func TransportError(ctx context.Context, provider string, failure, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", failure, provider, ctxErr)
	}
	return fmt.Errorf("%w: %w: %s: %w", failure, domain.ErrTransient, provider, err)
}

// Classify wraps an SDK error with the failure sentinel and, when the message
// carries an HTTP status, the matching retry category. For clients that
// surface status codes only in error text.
func Classify(ctx context.Context, provider string, failure, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s: %w", failure, provider, ctxErr)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %w: %s: %w", failure, domain.ErrRateLimited, provider, err)
	case strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return fmt.Errorf("%w: %w: %s: %w", failure, domain.ErrUnauthorized, provider, err)
	case containsAny(msg, "500", "502", "503", "504", "timeout", "connection refused", "connection reset"):
		return fmt.Errorf("%w: %w: %s: %w", failure, domain.ErrTransient, provider, err)
	default:
		return fmt.Errorf("%w: %s: %w", failure, provider, err)
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
