package driven

import (
	"context"
	"errors"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
)

// ErrGitHubNotConnected indicates the user has no usable GitHub credential.
var ErrGitHubNotConnected = errors.New("github account not connected")

// GitHubClient defines the driven port for the GitHub API, scoped to a
// single user's access token.
type GitHubClient interface {
	// ListRepositories returns the authenticated user's own repositories,
	// sorted by most recently pushed.
	ListRepositories(ctx context.Context) ([]model.RemoteRepository, error)

	// ListCommits returns commits for owner/repo within [since, until]
	// (unbounded where nil), enriched with per-file diff stats. A failure
	// fetching one commit's detail degrades that commit to zero-diff
	// metadata rather than failing the listing.
	ListCommits(ctx context.Context, repoFullName string, since, until *time.Time) ([]model.RemoteCommit, error)
}

// GitHubClientFactory builds a GitHubClient for a user's access token.
// Tokens are per-user rows, so clients are constructed per call rather than
// once at startup.
type GitHubClientFactory func(token string) GitHubClient
