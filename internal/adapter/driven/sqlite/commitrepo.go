package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CommitStore = (*CommitRepo)(nil)

// CommitRepo is the SQLite implementation of the CommitStore port interface.
// The files_changed column stores the structured file list as JSON.
type CommitRepo struct {
	db *DB
}

// NewCommitRepo creates a new CommitRepo backed by the given DB.
func NewCommitRepo(db *DB) *CommitRepo {
	return &CommitRepo{db: db}
}

// InsertBatch inserts commits inside one transaction. Empty IDs are assigned
// fresh UUIDs. Callers are expected to have deduplicated against stored
// hashes; the (repository_id, sha) unique constraint backstops them.
func (r *CommitRepo) InsertBatch(ctx context.Context, commits []model.Commit) error {
	if len(commits) == 0 {
		return nil
	}

	const query = `
		INSERT INTO commits (
			id, repository_id, sha, message, author, author_email,
			files_changed, additions, deletions, tweetability_score,
			commit_type, ai_summary, committed_at, analyzed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert commits: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, commit := range commits {
		if commit.ID == "" {
			commit.ID = uuid.NewString()
		}

		files := commit.FilesChanged
		if files == nil {
			files = []model.FileChange{}
		}
		filesJSON, err := json.Marshal(files)
		if err != nil {
			return fmt.Errorf("marshal files_changed for %s: %w", commit.SHA, err)
		}

		createdAt := commit.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		var score any
		if commit.TweetabilityScore != nil {
			score = *commit.TweetabilityScore
		}

		_, err = tx.ExecContext(ctx, query,
			commit.ID, commit.RepositoryID, commit.SHA, commit.Message,
			commit.Author, commit.AuthorEmail, string(filesJSON),
			commit.Additions, commit.Deletions, score,
			nullString(string(commit.CommitType)), commit.AISummary,
			commit.CommittedAt, timeValue(commit.AnalyzedAt), createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert commit %s: %w", commit.SHA, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert commits: %w", err)
	}

	return nil
}

// GetByID retrieves a commit by ID. Returns nil, nil if the row does not exist.
func (r *CommitRepo) GetByID(ctx context.Context, id string) (*model.Commit, error) {
	const query = commitSelect + ` WHERE id = ?`

	commit, err := scanCommit(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get commit %s: %w", id, err)
	}

	return commit, nil
}

// ListSHAsByRepository returns the set of hashes already stored for a repository.
func (r *CommitRepo) ListSHAsByRepository(ctx context.Context, repositoryID string) (map[string]bool, error) {
	const query = `SELECT sha FROM commits WHERE repository_id = ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list shas for %s: %w", repositoryID, err)
	}
	defer rows.Close()

	shas := make(map[string]bool)
	for rows.Next() {
		var sha string
		if err := rows.Scan(&sha); err != nil {
			return nil, fmt.Errorf("scan sha: %w", err)
		}
		shas[sha] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shas: %w", err)
	}

	return shas, nil
}

// ListByRepository returns stored commits newest first. limit <= 0 means no limit.
func (r *CommitRepo) ListByRepository(ctx context.Context, repositoryID string, limit int) ([]model.Commit, error) {
	query := commitSelect + ` WHERE repository_id = ? ORDER BY committed_at DESC`
	args := []any{repositoryID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list commits for %s: %w", repositoryID, err)
	}
	defer rows.Close()

	var commits []model.Commit
	for rows.Next() {
		commit, err := scanCommit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		commits = append(commits, *commit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commits: %w", err)
	}

	return commits, nil
}

// SetAnalysis records the analyzer's verdict. The analyzed_at IS NULL guard
// keeps the one-shot analysis invariant even under a racing second caller.
func (r *CommitRepo) SetAnalysis(ctx context.Context, id string, analysis model.CommitAnalysis, analyzedAt time.Time) error {
	const query = `
		UPDATE commits
		SET tweetability_score = ?, commit_type = ?, ai_summary = ?, analyzed_at = ?
		WHERE id = ? AND analyzed_at IS NULL
	`

	result, err := r.db.Writer.ExecContext(ctx, query,
		analysis.Score, string(analysis.CommitType), analysis.Summary,
		analyzedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set analysis for %s: %w", id, err)
	}

	return requireRow(result, driven.ErrCommitNotFound)
}

const commitSelect = `
	SELECT id, repository_id, sha, message, author, author_email,
	       files_changed, additions, deletions, tweetability_score,
	       commit_type, ai_summary, committed_at, analyzed_at, created_at
	FROM commits`

func scanCommit(s scanner) (*model.Commit, error) {
	var commit model.Commit
	var filesJSON string
	var score sql.NullInt64
	var commitType, analyzedAt sql.NullString
	var committedAt, createdAt string

	err := s.Scan(
		&commit.ID, &commit.RepositoryID, &commit.SHA, &commit.Message,
		&commit.Author, &commit.AuthorEmail, &filesJSON,
		&commit.Additions, &commit.Deletions, &score,
		&commitType, &commit.AISummary, &committedAt, &analyzedAt, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(filesJSON), &commit.FilesChanged); err != nil {
		return nil, fmt.Errorf("unmarshal files_changed: %w", err)
	}

	if score.Valid {
		v := int(score.Int64)
		commit.TweetabilityScore = &v
	}
	commit.CommitType = model.CommitType(commitType.String)

	if commit.CommittedAt, err = parseTime(committedAt); err != nil {
		return nil, fmt.Errorf("parse committed_at: %w", err)
	}
	if commit.AnalyzedAt, err = parseNullTime(analyzedAt); err != nil {
		return nil, fmt.Errorf("parse analyzed_at: %w", err)
	}
	if commit.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &commit, nil
}
