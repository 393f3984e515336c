// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

const (
	// commitPageSize bounds how many commits one sync window considers.
	commitPageSize = 50
	// detailFetchLimit bounds how many commits get per-file diff enrichment.
	detailFetchLimit = 20
	// patchByteLimit truncates stored diff excerpts to bound storage and
	// downstream prompt size.
	patchByteLimit = 2000
	// repoPageSize bounds the repository listing.
	repoPageSize = 100
)

// Client implements the driven.GitHubClient port using the go-github library,
// scoped to one user's access token.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client for the given user token with the
// following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with token auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// ListRepositories returns the authenticated user's own repositories sorted
// by most recently pushed. One page of repoPageSize is enough for the
// connect flow; users with more repos see the most recently active ones.
func (c *Client) ListRepositories(ctx context.Context) ([]model.RemoteRepository, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		Sort:        "pushed",
		Type:        "owner",
		ListOptions: gh.ListOptions{PerPage: repoPageSize},
	}

	repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}

	logRateLimit(resp, "user/repos", 0, len(repos))

	result := make([]model.RemoteRepository, 0, len(repos))
	for _, repo := range repos {
		result = append(result, mapRepository(repo))
	}

	return result, nil
}

// ListCommits returns commits for owner/repo within [since, until], each
// enriched with per-file diff stats. A failure fetching one commit's detail
// degrades that commit to zero-diff metadata rather than aborting the batch.
func (c *Client) ListCommits(ctx context.Context, repoFullName string, since, until *time.Time) ([]model.RemoteCommit, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	opts := &gh.CommitsListOptions{
		ListOptions: gh.ListOptions{PerPage: commitPageSize},
	}
	if since != nil {
		opts.Since = *since
	}
	if until != nil {
		opts.Until = *until
	}

	commits, resp, err := c.gh.Repositories.ListCommits(ctx, owner, repo, opts)
	if err != nil {
		return nil, fmt.Errorf("listing commits for %s: %w", repoFullName, err)
	}

	logRateLimit(resp, repoFullName+"/commits", 0, len(commits))

	result := make([]model.RemoteCommit, 0, len(commits))
	for i, commit := range commits {
		rc := mapCommit(commit)

		if i < detailFetchLimit {
			detail, _, err := c.gh.Repositories.GetCommit(ctx, owner, repo, commit.GetSHA(), nil)
			if err != nil {
				// Detail fetch failures keep the commit with zero-diff metadata.
				slog.Warn("commit detail fetch failed",
					"repo", repoFullName,
					"sha", commit.GetSHA(),
					"error", err,
				)
			} else {
				enrichCommit(&rc, detail)
			}
		}

		result = append(result, rc)
	}

	return result, nil
}

// mapRepository converts a go-github Repository to a domain RemoteRepository.
func mapRepository(repo *gh.Repository) model.RemoteRepository {
	defaultBranch := repo.GetDefaultBranch()
	if defaultBranch == "" {
		defaultBranch = "main"
	}

	return model.RemoteRepository{
		ID:            repo.GetID(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		DefaultBranch: defaultBranch,
		IsPrivate:     repo.GetPrivate(),
		URL:           repo.GetHTMLURL(),
		PushedAt:      repo.GetPushedAt().Time,
	}
}

// mapCommit converts a go-github RepositoryCommit to a domain RemoteCommit
// with zero diff stats. Enrichment fills the stats when detail is available.
func mapCommit(commit *gh.RepositoryCommit) model.RemoteCommit {
	committedAt := commit.GetCommit().GetAuthor().GetDate().Time
	if committedAt.IsZero() {
		committedAt = time.Now().UTC()
	}

	return model.RemoteCommit{
		SHA:          commit.GetSHA(),
		Message:      commit.GetCommit().GetMessage(),
		Author:       commit.GetCommit().GetAuthor().GetName(),
		AuthorEmail:  commit.GetCommit().GetAuthor().GetEmail(),
		FilesChanged: []model.FileChange{},
		CommittedAt:  committedAt,
	}
}

// enrichCommit fills diff stats and per-file changes from a commit detail
// response. Patches are truncated to patchByteLimit.
func enrichCommit(rc *model.RemoteCommit, detail *gh.RepositoryCommit) {
	rc.Additions = detail.GetStats().GetAdditions()
	rc.Deletions = detail.GetStats().GetDeletions()

	files := make([]model.FileChange, 0, len(detail.Files))
	for _, f := range detail.Files {
		files = append(files, model.FileChange{
			Filename:  f.GetFilename(),
			Status:    model.FileStatus(f.GetStatus()),
			Additions: f.GetAdditions(),
			Deletions: f.GetDeletions(),
			Patch:     truncate(f.GetPatch(), patchByteLimit),
		})
	}
	rc.FilesChanged = files
}

// truncate limits s to max bytes.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
