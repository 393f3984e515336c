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
var _ driven.SuggestionStore = (*SuggestionRepo)(nil)

// defaultListLimit caps suggestion listings when the caller passes none.
const defaultListLimit = 50

// SuggestionRepo is the SQLite implementation of the SuggestionStore port interface.
type SuggestionRepo struct {
	db *DB
}

// NewSuggestionRepo creates a new SuggestionRepo backed by the given DB.
func NewSuggestionRepo(db *DB) *SuggestionRepo {
	return &SuggestionRepo{db: db}
}

// InsertBatch inserts suggestions inside one transaction. Empty IDs are
// assigned fresh UUIDs; empty statuses default to pending.
func (r *SuggestionRepo) InsertBatch(ctx context.Context, suggestions []model.TweetSuggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	const query = `
		INSERT INTO tweet_suggestions (
			id, user_id, commit_id, content, tone, tweet_type, status,
			scheduled_for, posted_at, tweet_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert suggestions: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, sg := range suggestions {
		if sg.ID == "" {
			sg.ID = uuid.NewString()
		}
		if sg.Status == "" {
			sg.Status = model.StatusPending
		}

		createdAt := sg.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		var commitID any
		if sg.CommitID != nil {
			commitID = *sg.CommitID
		}

		_, err := tx.ExecContext(ctx, query,
			sg.ID, sg.UserID, commitID, sg.Content, string(sg.Tone),
			string(sg.TweetType), string(sg.Status),
			timeValue(sg.ScheduledFor), timeValue(sg.PostedAt),
			sg.TweetID, createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert suggestion: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert suggestions: %w", err)
	}

	return nil
}

// GetByID retrieves a suggestion by ID. Returns nil, nil if the row does not exist.
func (r *SuggestionRepo) GetByID(ctx context.Context, id string) (*model.TweetSuggestion, error) {
	const query = suggestionSelect + ` WHERE id = ?`

	sg, err := scanSuggestion(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get suggestion %s: %w", id, err)
	}

	return sg, nil
}

// ListByUser returns a user's suggestions newest first, optionally filtered
// by status and commit.
func (r *SuggestionRepo) ListByUser(ctx context.Context, userID string, filter driven.SuggestionFilter) ([]model.TweetSuggestion, error) {
	query := suggestionSelect + ` WHERE user_id = ?`
	args := []any{userID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.CommitID != "" {
		query += ` AND commit_id = ?`
		args = append(args, filter.CommitID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions for %s: %w", userID, err)
	}
	defer rows.Close()

	var suggestions []model.TweetSuggestion
	for rows.Next() {
		sg, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		suggestions = append(suggestions, *sg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggestions: %w", err)
	}

	return suggestions, nil
}

// UpdateStatus sets the lifecycle status. Transition legality is enforced by
// the service layer, not here.
func (r *SuggestionRepo) UpdateStatus(ctx context.Context, id string, status model.SuggestionStatus) error {
	const query = `UPDATE tweet_suggestions SET status = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("update suggestion %s status: %w", id, err)
	}

	return requireRow(result, driven.ErrSuggestionNotFound)
}

// UpdateContent replaces the draft text.
func (r *SuggestionRepo) UpdateContent(ctx context.Context, id string, content string) error {
	const query = `UPDATE tweet_suggestions SET content = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, content, id)
	if err != nil {
		return fmt.Errorf("update suggestion %s content: %w", id, err)
	}

	return requireRow(result, driven.ErrSuggestionNotFound)
}

// MarkScheduled sets status=scheduled with the future timestamp.
func (r *SuggestionRepo) MarkScheduled(ctx context.Context, id string, scheduledFor time.Time) error {
	const query = `UPDATE tweet_suggestions SET status = ?, scheduled_for = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, string(model.StatusScheduled), scheduledFor.UTC(), id)
	if err != nil {
		return fmt.Errorf("schedule suggestion %s: %w", id, err)
	}

	return requireRow(result, driven.ErrSuggestionNotFound)
}

// MarkPosted sets status=posted with the remote post ID and timestamp.
func (r *SuggestionRepo) MarkPosted(ctx context.Context, id string, tweetID string, postedAt time.Time) error {
	const query = `UPDATE tweet_suggestions SET status = ?, tweet_id = ?, posted_at = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, string(model.StatusPosted), tweetID, postedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("mark suggestion %s posted: %w", id, err)
	}

	return requireRow(result, driven.ErrSuggestionNotFound)
}

// Delete removes the suggestion row. Hard delete; the commit row is untouched.
func (r *SuggestionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM tweet_suggestions WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete suggestion %s: %w", id, err)
	}

	return requireRow(result, driven.ErrSuggestionNotFound)
}

const suggestionSelect = `
	SELECT id, user_id, commit_id, content, tone, tweet_type, status,
	       scheduled_for, posted_at, tweet_id, created_at
	FROM tweet_suggestions`

func scanSuggestion(s scanner) (*model.TweetSuggestion, error) {
	var sg model.TweetSuggestion
	var commitID, scheduledFor, postedAt sql.NullString
	var tone, tweetType, status string
	var createdAt string

	err := s.Scan(
		&sg.ID, &sg.UserID, &commitID, &sg.Content, &tone, &tweetType,
		&status, &scheduledFor, &postedAt, &sg.TweetID, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if commitID.Valid {
		v := commitID.String
		sg.CommitID = &v
	}
	sg.Tone = model.Tone(tone)
	sg.TweetType = model.TweetType(tweetType)
	sg.Status = model.SuggestionStatus(status)

	if sg.ScheduledFor, err = parseNullTime(scheduledFor); err != nil {
		return nil, fmt.Errorf("parse scheduled_for: %w", err)
	}
	if sg.PostedAt, err = parseNullTime(postedAt); err != nil {
		return nil, fmt.Errorf("parse posted_at: %w", err)
	}
	if sg.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &sg, nil
}
