package model

import (
	"strings"
	"time"
)

// FileChange is one file touched by a commit. Patch holds a truncated diff
// excerpt; storage and prompt size are bounded by the truncation done at
// fetch time.
type FileChange struct {
	Filename  string     `json:"filename"`
	Status    FileStatus `json:"status"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
	Patch     string     `json:"patch,omitempty"`
}

// Commit is one ingested commit. AnalyzedAt is nil until the analyzer has
// run; it is set exactly once and gates re-analysis.
type Commit struct {
	ID                string
	RepositoryID      string
	SHA               string
	Message           string
	Author            string
	AuthorEmail       string
	FilesChanged      []FileChange
	Additions         int
	Deletions         int
	TweetabilityScore *int
	CommitType        CommitType // Empty until analyzed.
	AISummary         string
	CommittedAt       time.Time
	AnalyzedAt        *time.Time
	CreatedAt         time.Time
}

// IsAnalyzed reports whether the analyzer has already processed this commit.
func (c Commit) IsAnalyzed() bool {
	return c.AnalyzedAt != nil
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}

// RemoteCommit is a commit as fetched from the GitHub API, before it is
// assigned a row ID. Not persisted.
type RemoteCommit struct {
	SHA          string
	Message      string
	Author       string
	AuthorEmail  string
	FilesChanged []FileChange
	Additions    int
	Deletions    int
	CommittedAt  time.Time
}

// CommitAnalysis is the analyzer's verdict on a commit.
type CommitAnalysis struct {
	Score      int // Always in [0,100].
	CommitType CommitType
	Summary    string
}
