// Package twitter implements the TwitterClient port against the Twitter v2 API.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TwitterClient = (*Client)(nil)

const defaultBaseURL = "https://api.twitter.com"

// Client implements the TwitterClient port. Post creation uses the v2 tweets
// endpoint with the user's bearer token; token refresh goes through the
// OAuth2 refresh-token grant with basic-auth client credentials.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL, mainly for httptest servers.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a Twitter API client. clientID and clientSecret are the
// app credentials used only for the token refresh grant.
func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createPostRequest struct {
	Text string `json:"text"`
}

type createPostResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
	Detail string `json:"detail"`
	Title  string `json:"title"`
}

// CreatePost publishes text and returns the remote post ID. A 401 maps to
// driven.ErrTwitterUnauthorized so the publisher can run its single
// refresh-and-retry cycle; any other failure carries the platform's detail.
func (c *Client) CreatePost(ctx context.Context, accessToken, text string) (string, error) {
	body, err := json.Marshal(createPostRequest{Text: text})
	if err != nil {
		return "", fmt.Errorf("marshal post body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create post request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("post request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read post response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", fmt.Errorf("create post: %w", driven.ErrTwitterUnauthorized)
	}

	var parsed createPostResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("parse post response: %w", err)
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail := parsed.Detail
		if detail == "" {
			detail = parsed.Title
		}
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		return "", &driven.TwitterAPIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if parsed.Data.ID == "" {
		return "", fmt.Errorf("post response missing tweet id")
	}

	return parsed.Data.ID, nil
}

// RefreshToken exchanges a refresh token for a new access/refresh pair.
// Twitter requires the app's client credentials via basic auth on the token
// endpoint, which AuthStyleInHeader provides.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token: %w", driven.ErrTwitterNotConnected)
	}

	cfg := &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/2/oauth2/token",
			AuthStyle: oauth2.AuthStyleInHeader,
		},
	}

	// Route the grant through our HTTP client so tests can intercept it.
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	token, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token grant: %w", err)
	}

	pair := &model.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if pair.RefreshToken == "" {
		// The platform may omit a rotated refresh token; keep the old one.
		pair.RefreshToken = refreshToken
	}

	return pair, nil
}
