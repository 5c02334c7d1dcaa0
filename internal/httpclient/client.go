// Package httpclient performs JSON request/response HTTP calls with
// bounded retries. Rate-limit responses honour Retry-After; callers
// may widen the retryable status set per request.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/timecamphq/peoplesync/internal/logging"
	"github.com/timecamphq/peoplesync/internal/metrics"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxAttempts = 3
	backoffBase        = 1 * time.Second
	backoffCap         = 30 * time.Second
)

// StatusError is a non-2xx response. The body is retained so callers
// can map it to their own error taxonomy.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, truncate(e.Body, 200))
}

// RetryPolicy controls which failures are retried for one request.
// Transport errors and HTTP 429 are always retried.
type RetryPolicy struct {
	// MaxAttempts bounds the total tries; zero means the default of 3.
	MaxAttempts int
	// ShouldRetry may declare additional (status, body) pairs
	// transient.
	ShouldRetry func(statusCode int, body []byte) bool
}

// Request describes one JSON call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is marshalled to JSON when non-nil.
	Body interface{}

	Retry RetryPolicy
	// Timeout overrides the 60s per-request default when positive.
	Timeout time.Duration
}

// Client serialises JSON calls against one base URL. It holds no
// concurrency primitives; callers issue requests serially.
type Client struct {
	BaseURL string
	Headers http.Header
	HTTP    *http.Client

	// Sleep is replaceable so tests can observe backoff delays.
	Sleep func(time.Duration)
}

func New(baseURL string, headers http.Header) *Client {
	return &Client{
		BaseURL: baseURL,
		Headers: headers,
		HTTP:    &http.Client{Timeout: defaultTimeout},
		Sleep:   time.Sleep,
	}
}

// Do performs the request and decodes the 2xx response body into out
// (skipped when out is nil or the body is empty).
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	maxAttempts := req.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	// A positive Timeout replaces the client's default for every
	// attempt of this request.
	client := c
	if req.Timeout > 0 {
		httpClient := *c.HTTP
		httpClient.Timeout = req.Timeout
		override := *c
		override.HTTP = &httpClient
		client = &override
	}

	delays := newBackoff()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, retryAfter, err := client.do(ctx, req, out)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxAttempts || !retryable(err, req.Retry, body) {
			return err
		}

		delay := delays.NextBackOff()
		if retryAfter > 0 {
			delay = retryAfter
		}

		metrics.HTTPRetries.Inc()
		logging.S.Debugf("retrying %s %s after %s (attempt %d/%d): %v",
			req.Method, req.Path, delay, attempt, maxAttempts, err)

		c.Sleep(delay)
	}

	return lastErr
}

// do performs one attempt. It returns the response body (for retry
// decisions) and any Retry-After delay the server requested.
func (c *Client) do(ctx context.Context, req Request, out interface{}) ([]byte, time.Duration, error) {
	var reqBody io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, &permanentError{fmt.Errorf("marshal request body: %w", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.BaseURL+req.Path, reqBody)
	if err != nil {
		return nil, 0, err
	}

	for key, values := range c.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if len(req.Query) > 0 {
		httpReq.URL.RawQuery = req.Query.Encode()
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("request %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, parseRetryAfter(resp.Header), &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return body, 0, &permanentError{fmt.Errorf("decode response from %s %s: %w", req.Method, req.Path, err)}
		}
	}

	return body, 0, nil
}

// permanentError marks failures that another attempt cannot fix, such
// as codec errors.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func retryable(err error, policy RetryPolicy, body []byte) bool {
	var permanent *permanentError
	if errors.As(err, &permanent) {
		return false
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		// Transport failure.
		return true
	}
	if statusErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if policy.ShouldRetry != nil {
		return policy.ShouldRetry(statusErr.StatusCode, body)
	}
	return false
}

func newBackoff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = backoffBase
	b.MaxInterval = backoffCap
	b.MaxElapsedTime = 0
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

func parseRetryAfter(header http.Header) time.Duration {
	raw := header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func truncate(body []byte, n int) string {
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
