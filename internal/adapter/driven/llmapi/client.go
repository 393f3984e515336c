// Package llmapi implements the TextModel port over the Anthropic and OpenAI
// completion APIs. Provider selection happens at the composition root based
// on which credentials are configured.
package llmapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TextModel = (*Client)(nil)

// maxResponseSize limits the completion response body to prevent memory
// exhaustion on a misbehaving endpoint.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// provider builds and parses requests for one completion API.
type provider interface {
	name() string
	endpoint() string
	setHeaders(req *http.Request)
	buildBody(prompt string, maxTokens int) ([]byte, error)
	parseBody(body []byte) (string, error)
}

// Client is a single-provider completion client implementing the TextModel port.
type Client struct {
	provider   provider
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client, mainly for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// NewAnthropic creates a client for the Anthropic messages API. baseURL is
// overridable for tests; empty means the production endpoint.
func NewAnthropic(apiKey, baseURL string, opts ...Option) *Client {
	return newClient(&anthropicProvider{apiKey: apiKey, baseURL: baseURL}, opts...)
}

// NewOpenAI creates a client for the OpenAI chat completions API.
func NewOpenAI(apiKey, baseURL string, opts ...Option) *Client {
	return newClient(&openaiProvider{apiKey: apiKey, baseURL: baseURL}, opts...)
}

func newClient(p provider, opts ...Option) *Client {
	c := &Client{
		provider: p,
		httpClient: &http.Client{
			Timeout: 120 * time.Second, // Completion calls are slow.
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends a single-turn prompt and returns the raw completion text.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := c.provider.buildBody(prompt, maxTokens)
	if err != nil {
		return "", fmt.Errorf("build %s request: %w", c.provider.name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create %s request: %w", c.provider.name(), err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.provider.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", c.provider.name(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read %s response: %w", c.provider.name(), err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned status %d: %s", c.provider.name(), resp.StatusCode, excerpt(respBody))
	}

	content, err := c.provider.parseBody(respBody)
	if err != nil {
		return "", fmt.Errorf("parse %s response: %w", c.provider.name(), err)
	}

	return content, nil
}

// excerpt bounds an error body for log-safe inclusion in error messages.
func excerpt(body []byte) string {
	const max = 200
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
