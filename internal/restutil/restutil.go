// Package restutil is a small JSON-over-HTTP client shared by the
// downstream integrations: recognizer, transcript sink and holdings store.
package restutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

const maxResponseBytes = 1 << 20

// ErrNoContent is returned by DoJSON when the response has an empty or
// null body.
var ErrNoContent = errors.New("response has no content")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Client sends JSON requests with a fixed set of headers.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	secret     string
}

// Option configures a Client.
type Option func(*Client)

// WithBearer authenticates requests with a bearer token.
func WithBearer(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.headers["Authorization"] = "Bearer " + token
		}
	}
}

// WithSigningSecret signs request bodies with HMAC-SHA256 in SignatureHeader.
func WithSigningSecret(secret string) Option {
	return func(c *Client) { c.secret = secret }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		headers: make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends body as JSON and returns the response body. A nil body sends
// no content. Non-2xx responses return a *StatusError.
func (c *Client) Do(ctx context.Context, method, url string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.secret != "" {
			req.Header.Set(SignatureHeader, Sign(c.secret, payload))
		}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	// Drain remainder for connection reuse.
	io.Copy(io.Discard, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// DoJSON sends body as JSON and decodes the response into dest.
func (c *Client) DoJSON(ctx context.Context, method, url string, body, dest any) error {
	respBody, err := c.Do(ctx, method, url, body)
	if err != nil {
		return err
	}
	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ErrNoContent
	}
	if dest == nil {
		return nil
	}
	if err := sonic.Unmarshal(trimmed, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
