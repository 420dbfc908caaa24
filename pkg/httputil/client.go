package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/speakerbox/pkg/errors"
	"github.com/matzehuels/speakerbox/pkg/observability"
)

const (
	httpTimeout = 30 * time.Second

	// maxErrorBody bounds how much of a failed response is kept for the
	// error message.
	maxErrorBody = 512
)

// NewHTTPClient creates an HTTP client with the standard timeout for
// remote API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// Client sends JSON requests with default headers, status mapping and
// retries of transient failures.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) ClientOption { return func(c *Client) { c.http = h } }

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) ClientOption {
	return func(c *Client) { c.attempts = attempts; c.delay = delay }
}

// NewClient creates a Client. Headers are applied to every request; pass
// nil if none are needed.
func NewClient(headers map[string]string, opts ...ClientOption) *Client {
	c := &Client{
		http:     NewHTTPClient(),
		headers:  headers,
		attempts: 3,
		delay:    time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON marshals in, POSTs it to url and decodes the JSON reply into out.
// Network failures, 429 and 5xx responses are retried.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
	}

	return Retry(ctx, c.attempts, c.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
		start := time.Now()

		resp, err := c.http.Do(req)
		if err != nil {
			hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
			if ctx.Err() != nil {
				return errors.Wrap(errors.ErrCodeTimeout, err, "request to %s cancelled", req.URL.Host)
			}
			return &RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request to %s failed", req.URL.Host)}
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

		if err := checkStatus(resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode response")
		}
		return nil
	})
}

func checkStatus(resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := bytes.TrimSpace(snippet)

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return errors.New(errors.ErrCodeUnauthorized, "API rejected credentials (status %d): %s", code, msg)
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "endpoint not found (status %d)", code)
	case code == http.StatusTooManyRequests:
		return &RetryableError{Err: &errors.RateLimitedError{RetryAfter: retryAfter(resp)}}
	case code >= 500:
		return &RetryableError{Err: errors.New(errors.ErrCodeNetwork, "server error (status %d): %s", code, msg)}
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d: %s", code, msg)
	}
}

func retryAfter(resp *http.Response) int {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
