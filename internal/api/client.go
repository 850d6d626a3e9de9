// Package api is the REST client for the CarePartner dashboard backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TokenSource supplies the access token sent with each request.
// *auth.Session satisfies it.
type TokenSource interface {
	AccessToken() string
}

// Client is a thin HTTP client for the dashboard API. It sends the raw
// access token in the Authorization header, unwraps the {result, data}
// envelope, and retries with exponential backoff on HTTP 429.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	maxRetries int
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger routes request logging to l.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithMaxRetries sets how many times a rate-limited request is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxRetries: 3,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// request describes one call. body is rebuilt on every attempt since a
// reader cannot be replayed.
type request struct {
	method string
	path   string
	query  url.Values
	body   func() (io.Reader, string, error)
}

func jsonBody(v interface{}) func() (io.Reader, string, error) {
	return func() (io.Reader, string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("marshaling request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.call(ctx, request{method: http.MethodGet, path: path, query: query}, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.call(ctx, request{method: http.MethodPost, path: path, body: jsonBody(body)}, result)
}

func (c *Client) delete(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.call(ctx, request{method: http.MethodDelete, path: path, query: query}, result)
}

// call performs req and decodes the envelope's data into result.
func (c *Client) call(ctx context.Context, req request, result interface{}) error {
	raw, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if err := decode(raw, result); err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	return nil
}

// do is the core HTTP method: it builds the request, sets auth, retries
// on rate limiting and maps error statuses.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var bodyReader io.Reader
		var contentType string
		if req.body != nil {
			r, ct, err := req.body()
			if err != nil {
				return nil, err
			}
			bodyReader, contentType = r, ct
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		if c.tokens != nil {
			if token := c.tokens.AccessToken(); token != "" {
				httpReq.Header.Set("Authorization", token)
			}
		}
		httpReq.Header.Set("Accept", "application/json")
		if contentType != "" {
			httpReq.Header.Set("Content-Type", contentType)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			c.log.Warn().Err(err).Str("method", req.method).Str("path", req.path).Msg("api request failed")
			return nil, fmt.Errorf("executing request %s %s: %w", req.method, req.path, err)
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("reading response body: %w", readErr)
		}

		c.log.Debug().
			Str("method", req.method).
			Str("path", req.path).
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Int("attempt", attempt).
			Msg("api request")

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := retryAfterDuration(resp, attempt)
			lastErr = fmt.Errorf("rate limited (429) on %s %s", req.method, req.path)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, &AuthError{Method: req.method, Path: req.path, Status: resp.StatusCode}
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{
				Method:  req.method,
				Path:    req.path,
				Status:  resp.StatusCode,
				Message: errorMessage(respBody),
			}
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// retryAfterDuration reads the Retry-After header and computes a wait
// duration. Falls back to exponential backoff if the header is missing.
func retryAfterDuration(resp *http.Response, attempt int) time.Duration {
	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}

	// Exponential backoff: 1s, 2s, 4s, ...
	backoff := time.Duration(1<<uint(attempt)) * time.Second
	if backoff > 30*time.Second {
		backoff = 30 * time.Second
	}
	return backoff
}

// envelope is the server's response wrapper.
type envelope struct {
	Result  string          `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// decode unwraps raw into result. Bodies without a recognizable envelope
// are decoded as-is, since some endpoints answer unwrapped.
func decode(raw []byte, result interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] != '{' {
		if result == nil {
			return nil
		}
		return unmarshal(raw, result)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	if env.Result == "fail" {
		if env.Message != "" {
			return fmt.Errorf("%w: %s", ErrRejected, env.Message)
		}
		return ErrRejected
	}
	if result == nil {
		return nil
	}
	if len(env.Data) > 0 {
		if string(env.Data) == "null" {
			return nil
		}
		return unmarshal(env.Data, result)
	}
	if env.Result == "" {
		return unmarshal(raw, result)
	}
	return nil
}

func unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshaling response: %w", err)
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(body []byte) string {
	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		return env.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
