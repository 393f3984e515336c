package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dgrier/commitcast/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database for testing.
// Writer and reader connections share the same in-memory database via cache=shared.
// A unique name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename component
	// and cannot be misinterpreted as query parameters in the "file:%s?..." DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedUser inserts a user row and returns its ID. Commits and suggestions
// reference users via foreign keys, so most tests need one.
func seedUser(t *testing.T, db *DB) string {
	t.Helper()

	id := uuid.NewString()
	user := model.User{
		ID:                 id,
		Email:              id + "@example.com",
		Name:               "Dana Builder",
		GitHubID:           "gh-" + id,
		GitHubAccessToken:  "gho_testtoken",
		TwitterID:          "tw-" + id,
		TwitterAccessToken: "twitter-access",
	}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), user))
	return id
}

// seedRepo inserts a repository row for the user and returns its ID.
func seedRepo(t *testing.T, db *DB, userID string) string {
	t.Helper()

	id := uuid.NewString()
	repo := model.Repository{
		ID:            id,
		UserID:        userID,
		GitHubRepoID:  int64(uuid.New().ID()),
		Name:          "hello-world",
		FullName:      "octocat/hello-world",
		DefaultBranch: "main",
		IsActive:      true,
	}
	require.NoError(t, NewRepoRepo(db).Create(context.Background(), repo))
	return id
}

// seedCommit inserts one commit row and returns its ID.
func seedCommit(t *testing.T, db *DB, repoID, sha string) string {
	t.Helper()

	id := uuid.NewString()
	commit := model.Commit{
		ID:           id,
		RepositoryID: repoID,
		SHA:          sha,
		Message:      "feat: add rate limiter\n\nToken bucket with burst support.",
		Author:       "octocat",
		AuthorEmail:  "octocat@example.com",
		FilesChanged: []model.FileChange{
			{Filename: "limiter.go", Status: model.FileAdded, Additions: 120, Deletions: 0},
		},
		Additions:   120,
		Deletions:   0,
		CommittedAt: time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, NewCommitRepo(db).InsertBatch(context.Background(), []model.Commit{commit}))
	return id
}
