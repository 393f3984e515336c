package twitter_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgrier/commitcast/internal/adapter/driven/twitter"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

func newTestClient(t *testing.T, handler http.Handler) *twitter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return twitter.NewClient("client-id", "client-secret",
		twitter.WithBaseURL(server.URL),
		twitter.WithHTTPClient(server.Client()),
	)
}

func TestCreatePost(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer user-access-token", r.Header.Get("Authorization"))

		var body struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "just shipped a thing", body.Text)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {"id": "1780000000000000000", "text": "just shipped a thing"}}`))
	})

	client := newTestClient(t, handler)

	id, err := client.CreatePost(context.Background(), "user-access-token", "just shipped a thing")
	require.NoError(t, err)
	assert.Equal(t, "1780000000000000000", id)
}

func TestCreatePost_Unauthorized(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"title": "Unauthorized"}`))
	})

	client := newTestClient(t, handler)

	_, err := client.CreatePost(context.Background(), "expired", "text")
	assert.ErrorIs(t, err, driven.ErrTwitterUnauthorized)
}

func TestCreatePost_APIError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail": "You are not allowed to create a Tweet with duplicate content.", "title": "Forbidden"}`))
	})

	client := newTestClient(t, handler)

	_, err := client.CreatePost(context.Background(), "token", "same tweet again")

	var apiErr *driven.TwitterAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "You are not allowed to create a Tweet with duplicate content.", apiErr.Detail)
}

func TestCreatePost_ErrorWithoutDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{}`))
	})

	client := newTestClient(t, handler)

	_, err := client.CreatePost(context.Background(), "token", "text")

	var apiErr *driven.TwitterAPIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Too Many Requests", apiErr.Detail, "detail falls back to the status text")
}

func TestCreatePost_MissingID(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data": {}}`))
	})

	client := newTestClient(t, handler)

	_, err := client.CreatePost(context.Background(), "token", "text")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/oauth2/token", r.URL.Path)

		// Twitter wants the app credentials via basic auth.
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "new-access", "refresh_token": "new-refresh", "token_type": "bearer", "expires_in": 7200}`))
	})

	client := newTestClient(t, handler)

	pair, err := client.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "new-refresh", pair.RefreshToken)
}

func TestRefreshToken_KeepsOldRefreshWhenOmitted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token": "new-access", "token_type": "bearer", "expires_in": 7200}`))
	})

	client := newTestClient(t, handler)

	pair, err := client.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.AccessToken)
	assert.Equal(t, "old-refresh", pair.RefreshToken)
}

func TestRefreshToken_Rejected(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	})

	client := newTestClient(t, handler)

	_, err := client.RefreshToken(context.Background(), "revoked")
	assert.Error(t, err)
}

func TestRefreshToken_Empty(t *testing.T) {
	client := twitter.NewClient("client-id", "client-secret")

	_, err := client.RefreshToken(context.Background(), "")
	assert.ErrorIs(t, err, driven.ErrTwitterNotConnected)
}
