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
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port interface.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo backed by the given DB.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. An empty ID is assigned a fresh UUID.
func (r *UserRepo) Create(ctx context.Context, user model.User) error {
	const query = `
		INSERT INTO users (
			id, email, name, github_id, github_access_token,
			twitter_id, twitter_access_token, twitter_refresh_token,
			voice_settings, plan, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.Plan == "" {
		user.Plan = "free"
	}

	now := time.Now().UTC()
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	voiceJSON, err := marshalVoice(user.Voice)
	if err != nil {
		return fmt.Errorf("marshal voice settings: %w", err)
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		user.ID, user.Email, user.Name,
		nullString(user.GitHubID), user.GitHubAccessToken,
		nullString(user.TwitterID), user.TwitterAccessToken, user.TwitterRefreshToken,
		voiceJSON, user.Plan, createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by ID. Returns nil, nil if the user does not exist.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	const query = `
		SELECT id, email, name, github_id, github_access_token,
		       twitter_id, twitter_access_token, twitter_refresh_token,
		       voice_settings, plan, created_at, updated_at
		FROM users WHERE id = ?
	`

	user, err := scanUser(r.db.Reader.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}

	return user, nil
}

// UpdateVoiceSettings replaces the user's voice profile.
func (r *UserRepo) UpdateVoiceSettings(ctx context.Context, userID string, voice *model.VoiceSettings) error {
	const query = `UPDATE users SET voice_settings = ?, updated_at = ? WHERE id = ?`

	voiceJSON, err := marshalVoice(voice)
	if err != nil {
		return fmt.Errorf("marshal voice settings: %w", err)
	}

	result, err := r.db.Writer.ExecContext(ctx, query, voiceJSON, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update voice settings for %s: %w", userID, err)
	}

	return requireRow(result, driven.ErrUserNotFound)
}

// UpdateTwitterTokens persists a refreshed access/refresh pair.
func (r *UserRepo) UpdateTwitterTokens(ctx context.Context, userID, accessToken, refreshToken string) error {
	const query = `UPDATE users SET twitter_access_token = ?, twitter_refresh_token = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, accessToken, refreshToken, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("update twitter tokens for %s: %w", userID, err)
	}

	return requireRow(result, driven.ErrUserNotFound)
}

// requireRow maps a zero-row update to the given sentinel.
func requireRow(result sql.Result, sentinel error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel
	}
	return nil
}

func marshalVoice(voice *model.VoiceSettings) (any, error) {
	if voice == nil {
		return nil, nil
	}
	data, err := json.Marshal(voice)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanUser(s scanner) (*model.User, error) {
	var user model.User
	var githubID, twitterID, voiceJSON sql.NullString
	var createdAt, updatedAt string

	err := s.Scan(
		&user.ID, &user.Email, &user.Name,
		&githubID, &user.GitHubAccessToken,
		&twitterID, &user.TwitterAccessToken, &user.TwitterRefreshToken,
		&voiceJSON, &user.Plan, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.GitHubID = githubID.String
	user.TwitterID = twitterID.String

	if voiceJSON.Valid && voiceJSON.String != "" {
		var voice model.VoiceSettings
		if err := json.Unmarshal([]byte(voiceJSON.String), &voice); err != nil {
			return nil, fmt.Errorf("unmarshal voice settings: %w", err)
		}
		user.Voice = &voice
	}

	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &user, nil
}
