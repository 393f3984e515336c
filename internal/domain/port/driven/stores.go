package driven

import (
	"context"
	"errors"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
)

// Sentinel errors shared by store implementations and the services above them.
var (
	// ErrUserNotFound indicates the referenced user row does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRepoNotFound indicates the referenced repository row does not exist.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrCommitNotFound indicates the referenced commit row does not exist.
	ErrCommitNotFound = errors.New("commit not found")

	// ErrSuggestionNotFound indicates the referenced suggestion row does not exist.
	ErrSuggestionNotFound = errors.New("suggestion not found")
)

// UserStore defines the driven port for user persistence.
// Get methods return nil, nil when the row does not exist.
type UserStore interface {
	Create(ctx context.Context, user model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateVoiceSettings(ctx context.Context, userID string, voice *model.VoiceSettings) error
	// UpdateTwitterTokens persists a refreshed access/refresh pair.
	UpdateTwitterTokens(ctx context.Context, userID, accessToken, refreshToken string) error
}

// RepoStore defines the driven port for connected-repository persistence.
type RepoStore interface {
	Create(ctx context.Context, repo model.Repository) error
	GetByID(ctx context.Context, id string) (*model.Repository, error)
	// GetByGitHubRepoID looks up a user's connection for a remote repository
	// ID, active or not. Returns nil, nil when no row exists.
	GetByGitHubRepoID(ctx context.Context, userID string, githubRepoID int64) (*model.Repository, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.Repository, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdateLastSyncedAt(ctx context.Context, id string, syncedAt time.Time) error
}

// CommitStore defines the driven port for commit persistence.
type CommitStore interface {
	InsertBatch(ctx context.Context, commits []model.Commit) error
	GetByID(ctx context.Context, id string) (*model.Commit, error)
	// ListSHAsByRepository returns the set of commit hashes already stored
	// for a repository; sync uses it for set-difference deduplication.
	ListSHAsByRepository(ctx context.Context, repositoryID string) (map[string]bool, error)
	ListByRepository(ctx context.Context, repositoryID string, limit int) ([]model.Commit, error)
	// SetAnalysis records the analyzer's verdict and stamps analyzed_at.
	SetAnalysis(ctx context.Context, id string, analysis model.CommitAnalysis, analyzedAt time.Time) error
}

// SuggestionFilter narrows a suggestion listing. Zero values mean no filter;
// Limit <= 0 falls back to the store default of 50.
type SuggestionFilter struct {
	Status   model.SuggestionStatus
	CommitID string
	Limit    int
}

// SuggestionStore defines the driven port for draft persistence.
type SuggestionStore interface {
	InsertBatch(ctx context.Context, suggestions []model.TweetSuggestion) error
	GetByID(ctx context.Context, id string) (*model.TweetSuggestion, error)
	ListByUser(ctx context.Context, userID string, filter SuggestionFilter) ([]model.TweetSuggestion, error)
	UpdateStatus(ctx context.Context, id string, status model.SuggestionStatus) error
	UpdateContent(ctx context.Context, id string, content string) error
	// MarkScheduled sets status=scheduled and the future timestamp.
	MarkScheduled(ctx context.Context, id string, scheduledFor time.Time) error
	// MarkPosted sets status=posted with the remote post ID and timestamp.
	MarkPosted(ctx context.Context, id string, tweetID string, postedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
