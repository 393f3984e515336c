package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RepoStore = (*RepoRepo)(nil)

// RepoRepo is the SQLite implementation of the RepoStore port interface.
type RepoRepo struct {
	db *DB
}

// NewRepoRepo creates a new RepoRepo backed by the given DB.
func NewRepoRepo(db *DB) *RepoRepo {
	return &RepoRepo{db: db}
}

// Create inserts a new repository connection. An empty ID is assigned a
// fresh UUID. The (user_id, github_repo_id) unique constraint keeps one row
// per user per remote repository.
func (r *RepoRepo) Create(ctx context.Context, repo model.Repository) error {
	const query = `
		INSERT INTO repositories (
			id, user_id, github_repo_id, name, full_name, description,
			default_branch, is_private, is_active, last_synced_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if repo.ID == "" {
		repo.ID = uuid.NewString()
	}
	if repo.DefaultBranch == "" {
		repo.DefaultBranch = "main"
	}

	createdAt := repo.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		repo.ID, repo.UserID, repo.GitHubRepoID, repo.Name, repo.FullName,
		repo.Description, repo.DefaultBranch, boolInt(repo.IsPrivate),
		boolInt(repo.IsActive), timeValue(repo.LastSyncedAt), createdAt,
	)
	if err != nil {
		return fmt.Errorf("create repository %s: %w", repo.FullName, err)
	}

	return nil
}

// GetByID retrieves a repository by ID. Returns nil, nil if the row does not exist.
func (r *RepoRepo) GetByID(ctx context.Context, id string) (*model.Repository, error) {
	const query = repoSelect + ` WHERE id = ?`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %s: %w", id, err)
	}

	return repo, nil
}

// GetByGitHubRepoID looks up a user's connection for a remote repository ID,
// active or not. Returns nil, nil when no row exists.
func (r *RepoRepo) GetByGitHubRepoID(ctx context.Context, userID string, githubRepoID int64) (*model.Repository, error) {
	const query = repoSelect + ` WHERE user_id = ? AND github_repo_id = ?`

	repo, err := scanRepository(r.db.Reader.QueryRowContext(ctx, query, userID, githubRepoID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository by github id %d: %w", githubRepoID, err)
	}

	return repo, nil
}

// ListActiveByUser returns the user's active connections ordered by full name.
func (r *RepoRepo) ListActiveByUser(ctx context.Context, userID string) ([]model.Repository, error) {
	const query = repoSelect + ` WHERE user_id = ? AND is_active = 1 ORDER BY full_name`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list repositories for %s: %w", userID, err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		repos = append(repos, *repo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}

	return repos, nil
}

// SetActive toggles the connection's active flag. Connect reactivates,
// disconnect soft-deletes; commits are retained either way.
func (r *RepoRepo) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE repositories SET is_active = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("set repository %s active=%t: %w", id, active, err)
	}

	return requireRow(result, driven.ErrRepoNotFound)
}

// UpdateLastSyncedAt stamps the repository's last successful sync time.
func (r *RepoRepo) UpdateLastSyncedAt(ctx context.Context, id string, syncedAt time.Time) error {
	const query = `UPDATE repositories SET last_synced_at = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, syncedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("update last_synced_at for %s: %w", id, err)
	}

	return requireRow(result, driven.ErrRepoNotFound)
}

const repoSelect = `
	SELECT id, user_id, github_repo_id, name, full_name, description,
	       default_branch, is_private, is_active, last_synced_at, created_at
	FROM repositories`

func scanRepository(s scanner) (*model.Repository, error) {
	var repo model.Repository
	var isPrivate, isActive int
	var lastSyncedAt sql.NullString
	var createdAt string

	err := s.Scan(
		&repo.ID, &repo.UserID, &repo.GitHubRepoID, &repo.Name, &repo.FullName,
		&repo.Description, &repo.DefaultBranch, &isPrivate, &isActive,
		&lastSyncedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	repo.IsPrivate = isPrivate != 0
	repo.IsActive = isActive != 0

	if repo.LastSyncedAt, err = parseNullTime(lastSyncedAt); err != nil {
		return nil, fmt.Errorf("parse last_synced_at: %w", err)
	}
	if repo.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &repo, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
