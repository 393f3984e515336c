package model

import "time"

// Repository is a connected GitHub repository for a user. Disconnecting
// flips IsActive rather than deleting the row so ingested commits survive.
type Repository struct {
	ID            string
	UserID        string
	GitHubRepoID  int64
	Name          string
	FullName      string // owner/name
	Description   string
	DefaultBranch string
	IsPrivate     bool
	IsActive      bool
	LastSyncedAt  *time.Time
	CreatedAt     time.Time
}

// RemoteRepository is a repository as listed by the GitHub API, before it is
// connected. Not persisted.
type RemoteRepository struct {
	ID            int64
	Name          string
	FullName      string
	Description   string
	DefaultBranch string
	IsPrivate     bool
	URL           string
	PushedAt      time.Time
}
