package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dgrier/commitcast/internal/application"
	"github.com/dgrier/commitcast/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RemoteRepoResponse is the JSON representation of a repository on GitHub
// that is not necessarily connected yet.
type RemoteRepoResponse struct {
	GitHubRepoID  int64  `json:"github_repo_id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	IsPrivate     bool   `json:"is_private"`
	URL           string `json:"url"`
	PushedAt      string `json:"pushed_at,omitempty"`
}

// RepoResponse is the JSON representation of a connected repository.
type RepoResponse struct {
	ID            string `json:"id"`
	GitHubRepoID  int64  `json:"github_repo_id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	IsPrivate     bool   `json:"is_private"`
	IsActive      bool   `json:"is_active"`
	LastSyncedAt  string `json:"last_synced_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// CommitResponse is the JSON representation of a stored commit.
type CommitResponse struct {
	ID                string             `json:"id"`
	RepositoryID      string             `json:"repository_id"`
	SHA               string             `json:"sha"`
	Message           string             `json:"message"`
	Author            string             `json:"author"`
	FilesChanged      []model.FileChange `json:"files_changed"`
	Additions         int                `json:"additions"`
	Deletions         int                `json:"deletions"`
	TweetabilityScore *int               `json:"tweetability_score,omitempty"`
	CommitType        string             `json:"commit_type,omitempty"`
	AISummary         string             `json:"ai_summary,omitempty"`
	CommittedAt       string             `json:"committed_at"`
	AnalyzedAt        string             `json:"analyzed_at,omitempty"`
}

// SuggestionResponse is the JSON representation of a tweet suggestion.
type SuggestionResponse struct {
	ID           string  `json:"id"`
	CommitID     *string `json:"commit_id,omitempty"`
	Content      string  `json:"content"`
	Tone         string  `json:"tone"`
	TweetType    string  `json:"tweet_type"`
	Status       string  `json:"status"`
	ScheduledFor string  `json:"scheduled_for,omitempty"`
	PostedAt     string  `json:"posted_at,omitempty"`
	TweetID      string  `json:"tweet_id,omitempty"`
	ShareURL     string  `json:"share_url"`
	CreatedAt    string  `json:"created_at"`
}

// SyncResponse reports the outcome of a repository sync.
type SyncResponse struct {
	NewCommits int `json:"new_commits"`
}

// ProcessResponse reports the outcome of processing a single commit.
type ProcessResponse struct {
	Suggestions int `json:"suggestions"`
}

// ConnectRepoRequest is the JSON body for the connect repository endpoint.
type ConnectRepoRequest struct {
	GitHubRepoID  int64  `json:"github_repo_id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	IsPrivate     bool   `json:"is_private"`
}

// ProcessBatchRequest is the JSON body for the batch processing endpoint.
// When Combined is true a single summary draft is generated for all the
// commits instead of per-commit variations.
type ProcessBatchRequest struct {
	CommitIDs []string `json:"commit_ids"`
	Combined  bool     `json:"combined"`
}

// UpdateStatusRequest is the JSON body for the status transition endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateContentRequest is the JSON body for the content edit endpoint.
type UpdateContentRequest struct {
	Content string `json:"content"`
}

// ScheduleRequest is the JSON body for the schedule endpoint.
type ScheduleRequest struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toRemoteRepoResponse converts a GitHub repository listing entry to its
// JSON representation.
func toRemoteRepoResponse(repo model.RemoteRepository) RemoteRepoResponse {
	resp := RemoteRepoResponse{
		GitHubRepoID:  repo.ID,
		Name:          repo.Name,
		FullName:      repo.FullName,
		Description:   repo.Description,
		DefaultBranch: repo.DefaultBranch,
		IsPrivate:     repo.IsPrivate,
		URL:           repo.URL,
	}
	if !repo.PushedAt.IsZero() {
		resp.PushedAt = repo.PushedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toRepoResponse converts a connected repository to its JSON representation.
func toRepoResponse(repo model.Repository) RepoResponse {
	resp := RepoResponse{
		ID:            repo.ID,
		GitHubRepoID:  repo.GitHubRepoID,
		Name:          repo.Name,
		FullName:      repo.FullName,
		Description:   repo.Description,
		DefaultBranch: repo.DefaultBranch,
		IsPrivate:     repo.IsPrivate,
		IsActive:      repo.IsActive,
		CreatedAt:     repo.CreatedAt.UTC().Format(time.RFC3339),
	}
	if repo.LastSyncedAt != nil {
		resp.LastSyncedAt = repo.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toCommitResponse converts a stored commit to its JSON representation.
func toCommitResponse(commit model.Commit) CommitResponse {
	files := commit.FilesChanged
	if files == nil {
		files = []model.FileChange{}
	}

	resp := CommitResponse{
		ID:                commit.ID,
		RepositoryID:      commit.RepositoryID,
		SHA:               commit.SHA,
		Message:           commit.Message,
		Author:            commit.Author,
		FilesChanged:      files,
		Additions:         commit.Additions,
		Deletions:         commit.Deletions,
		TweetabilityScore: commit.TweetabilityScore,
		CommitType:        string(commit.CommitType),
		AISummary:         commit.AISummary,
		CommittedAt:       commit.CommittedAt.UTC().Format(time.RFC3339),
	}
	if commit.AnalyzedAt != nil {
		resp.AnalyzedAt = commit.AnalyzedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// toSuggestionResponse converts a tweet suggestion to its JSON representation.
func toSuggestionResponse(s model.TweetSuggestion) SuggestionResponse {
	resp := SuggestionResponse{
		ID:        s.ID,
		CommitID:  s.CommitID,
		Content:   s.Content,
		Tone:      string(s.Tone),
		TweetType: string(s.TweetType),
		Status:    string(s.Status),
		TweetID:   s.TweetID,
		ShareURL:  application.ShareURL(s.Content),
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if s.ScheduledFor != nil {
		resp.ScheduledFor = s.ScheduledFor.UTC().Format(time.RFC3339)
	}
	if s.PostedAt != nil {
		resp.PostedAt = s.PostedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
