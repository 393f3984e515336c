package github_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ghAdapter "github.com/dgrier/commitcast/internal/adapter/driven/github"
	"github.com/dgrier/commitcast/internal/domain/model"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) *ghAdapter.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client
}

type repoJSON struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch,omitempty"`
	Private       bool   `json:"private"`
	HTMLURL       string `json:"html_url"`
	PushedAt      string `json:"pushed_at,omitempty"`
}

type commitJSON struct {
	SHA    string          `json:"sha"`
	Commit innerCommitJSON `json:"commit"`
	Stats  *statsJSON      `json:"stats,omitempty"`
	Files  []fileJSON      `json:"files,omitempty"`
}

type innerCommitJSON struct {
	Message string     `json:"message"`
	Author  authorJSON `json:"author"`
}

type authorJSON struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

type statsJSON struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

type fileJSON struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Patch     string `json:"patch,omitempty"`
}

func TestListRepositories(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/repos", r.URL.Path)
		assert.Equal(t, "pushed", r.URL.Query().Get("sort"))
		assert.Equal(t, "owner", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]repoJSON{
			{
				ID:            42,
				Name:          "hello-world",
				FullName:      "octocat/hello-world",
				Description:   "Sample project",
				DefaultBranch: "trunk",
				Private:       true,
				HTMLURL:       "https://github.com/octocat/hello-world",
				PushedAt:      "2026-02-10T09:30:00Z",
			},
			{
				ID:       43,
				Name:     "no-branch",
				FullName: "octocat/no-branch",
			},
		})
	})

	client := newTestClient(t, handler)

	repos, err := client.ListRepositories(context.Background())
	require.NoError(t, err)
	require.Len(t, repos, 2)

	assert.Equal(t, int64(42), repos[0].ID)
	assert.Equal(t, "octocat/hello-world", repos[0].FullName)
	assert.Equal(t, "trunk", repos[0].DefaultBranch)
	assert.True(t, repos[0].IsPrivate)
	assert.Equal(t, time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC), repos[0].PushedAt.UTC())

	assert.Equal(t, "main", repos[1].DefaultBranch, "missing default branch falls back to main")
}

func TestListCommits_EnrichesWithDetails(t *testing.T) {
	listed := []commitJSON{
		{
			SHA: "abc123",
			Commit: innerCommitJSON{
				Message: "feat: add rate limiter",
				Author:  authorJSON{Name: "octocat", Email: "octocat@example.com", Date: "2026-02-10T09:30:00Z"},
			},
		},
	}
	detail := commitJSON{
		SHA: "abc123",
		Commit: innerCommitJSON{
			Message: "feat: add rate limiter",
			Author:  authorJSON{Name: "octocat", Email: "octocat@example.com", Date: "2026-02-10T09:30:00Z"},
		},
		Stats: &statsJSON{Additions: 120, Deletions: 3},
		Files: []fileJSON{
			{Filename: "limiter.go", Status: "added", Additions: 120, Deletions: 3, Patch: "@@ -0,0 +1,120 @@"},
		},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/repos/octocat/hello-world/commits":
			_ = json.NewEncoder(w).Encode(listed)
		case r.URL.Path == "/repos/octocat/hello-world/commits/abc123":
			_ = json.NewEncoder(w).Encode(detail)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	client := newTestClient(t, handler)

	commits, err := client.ListCommits(context.Background(), "octocat/hello-world", nil, nil)
	require.NoError(t, err)
	require.Len(t, commits, 1)

	c := commits[0]
	assert.Equal(t, "abc123", c.SHA)
	assert.Equal(t, "feat: add rate limiter", c.Message)
	assert.Equal(t, "octocat", c.Author)
	assert.Equal(t, 120, c.Additions)
	assert.Equal(t, 3, c.Deletions)
	require.Len(t, c.FilesChanged, 1)
	assert.Equal(t, "limiter.go", c.FilesChanged[0].Filename)
	assert.Equal(t, model.FileAdded, c.FilesChanged[0].Status)
	assert.Equal(t, "@@ -0,0 +1,120 @@", c.FilesChanged[0].Patch)
}

func TestListCommits_PassesWindow(t *testing.T) {
	var gotSince, gotUntil string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/octocat/hello-world/commits" {
			gotSince = r.URL.Query().Get("since")
			gotUntil = r.URL.Query().Get("until")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	})

	client := newTestClient(t, handler)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, err := client.ListCommits(context.Background(), "octocat/hello-world", &since, &until)
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01T00:00:00Z", gotSince)
	assert.Equal(t, "2026-02-01T00:00:00Z", gotUntil)
}

func TestListCommits_DetailFailureDegrades(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/repos/octocat/hello-world/commits":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]commitJSON{{
				SHA: "abc123",
				Commit: innerCommitJSON{
					Message: "feat: add rate limiter",
					Author:  authorJSON{Name: "octocat", Date: "2026-02-10T09:30:00Z"},
				},
			}})
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	})

	client := newTestClient(t, handler)

	commits, err := client.ListCommits(context.Background(), "octocat/hello-world", nil, nil)
	require.NoError(t, err, "a failed detail fetch must not fail the listing")
	require.Len(t, commits, 1)
	assert.Equal(t, "abc123", commits[0].SHA)
	assert.Zero(t, commits[0].Additions)
	assert.Empty(t, commits[0].FilesChanged)
}

func TestListCommits_TruncatesPatch(t *testing.T) {
	bigPatch := strings.Repeat("x", 5000)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/repos/octocat/hello-world/commits":
			_ = json.NewEncoder(w).Encode([]commitJSON{{
				SHA:    "abc123",
				Commit: innerCommitJSON{Message: "big change", Author: authorJSON{Date: "2026-02-10T09:30:00Z"}},
			}})
		default:
			_ = json.NewEncoder(w).Encode(commitJSON{
				SHA:    "abc123",
				Commit: innerCommitJSON{Message: "big change", Author: authorJSON{Date: "2026-02-10T09:30:00Z"}},
				Files:  []fileJSON{{Filename: "gen.go", Status: "modified", Patch: bigPatch}},
			})
		}
	})

	client := newTestClient(t, handler)

	commits, err := client.ListCommits(context.Background(), "octocat/hello-world", nil, nil)
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Len(t, commits[0].FilesChanged, 1)
	assert.Less(t, len(commits[0].FilesChanged[0].Patch), len(bigPatch))
}

func TestListCommits_InvalidRepoName(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	_, err := client.ListCommits(context.Background(), "not-a-full-name", nil, nil)
	assert.Error(t, err)
}
