package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/httputil"
	"github.com/matzehuels/uiadoption/pkg/observability"
)

// Client provides shared HTTP functionality for API clients.
// It handles retry logic, status mapping and common request headers.
type Client struct {
	http     *http.Client
	headers  map[string]string
	attempts int
	delay    time.Duration
}

// NewClient creates a Client with default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:     NewHTTPClient(),
		headers:  headers,
		attempts: 3,
		delay:    time.Second,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

// WithRetry sets the number of attempts and the initial backoff delay.
func (c *Client) WithRetry(attempts int, delay time.Duration) *Client {
	c.attempts = attempts
	c.delay = delay
	return c
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// Network failures and 5xx responses are retried with exponential backoff.
func (c *Client) Get(ctx context.Context, rawURL string, v any) error {
	return httputil.Retry(ctx, c.attempts, c.delay, func() error {
		body, err := c.doRequest(ctx, rawURL)
		if err != nil {
			return err
		}
		defer body.Close()
		if err := json.NewDecoder(body).Decode(v); err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "decode %s", rawURL)
		}
		return nil
	})
}

func (c *Client) doRequest(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, httputil.Retryable(errors.Wrap(errors.ErrCodeNetwork, err, "GET %s", path))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, path); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(resp *http.Response, path string) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s: not found", path)
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "%s: bad or missing credentials", path)
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return errors.Wrap(errors.ErrCodeRateLimited, &errors.RateLimitedError{
			RetryAfter: int(retryAfter(resp.Header) / time.Second),
		}, "%s", path)
	case code == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "%s: access denied", path)
	case code >= 500:
		return httputil.RetryableAfter(
			errors.New(errors.ErrCodeNetwork, "%s: status %d", path, code),
			retryAfter(resp.Header),
		)
	default:
		return errors.New(errors.ErrCodeNetwork, "%s: status %d", path, code)
	}
}
