package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// PublishService posts accepted suggestions to the user's connected
// Twitter account. A rejected access token is refreshed and the post is
// retried exactly once; any further failure surfaces as a PublishError.
//
// Publishing is at-most-once: the post goes out before the suggestion is
// marked posted, so a crash between the two leaves a posted tweet with a
// stale local status rather than risking a duplicate post on retry.
type PublishService struct {
	users       driven.UserStore
	suggestions driven.SuggestionStore
	twitter     driven.TwitterClient
}

func NewPublishService(
	users driven.UserStore,
	suggestions driven.SuggestionStore,
	twitter driven.TwitterClient,
) *PublishService {
	return &PublishService{
		users:       users,
		suggestions: suggestions,
		twitter:     twitter,
	}
}

// Publish posts the suggestion and marks it posted. It returns the
// platform's post ID.
func (s *PublishService) Publish(ctx context.Context, userID, suggestionID string) (*model.TweetSuggestion, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return nil, driven.ErrUserNotFound
	}
	if !user.HasTwitter() {
		return nil, driven.ErrTwitterNotConnected
	}

	suggestion, err := s.suggestions.GetByID(ctx, suggestionID)
	if err != nil {
		return nil, fmt.Errorf("loading suggestion: %w", err)
	}
	if suggestion == nil {
		return nil, driven.ErrSuggestionNotFound
	}
	if suggestion.UserID != userID {
		return nil, ErrNotAuthorized
	}
	if suggestion.Status != model.StatusAccepted && suggestion.Status != model.StatusScheduled {
		return nil, fmt.Errorf("%s to %s: %w", suggestion.Status, model.StatusPosted, ErrInvalidTransition)
	}

	tweetID, err := s.twitter.CreatePost(ctx, user.TwitterAccessToken, suggestion.Content)
	if errors.Is(err, driven.ErrTwitterUnauthorized) {
		tweetID, err = s.retryWithRefresh(ctx, user, suggestion.Content)
	}
	if err != nil {
		return nil, &PublishError{Detail: publishDetail(err), Err: err}
	}

	postedAt := time.Now().UTC()
	if err := s.suggestions.MarkPosted(ctx, suggestionID, tweetID, postedAt); err != nil {
		return nil, fmt.Errorf("marking suggestion posted: %w", err)
	}

	suggestion.Status = model.StatusPosted
	suggestion.TweetID = tweetID
	suggestion.PostedAt = &postedAt

	slog.Info("published suggestion", "suggestion_id", suggestionID, "tweet_id", tweetID)
	return suggestion, nil
}

// retryWithRefresh exchanges the refresh token for new credentials,
// persists them, and retries the post once with the fresh access token.
func (s *PublishService) retryWithRefresh(ctx context.Context, user *model.User, content string) (string, error) {
	if user.TwitterRefreshToken == "" {
		return "", driven.ErrTwitterUnauthorized
	}

	pair, err := s.twitter.RefreshToken(ctx, user.TwitterRefreshToken)
	if err != nil {
		return "", fmt.Errorf("refreshing access token: %w", err)
	}

	if err := s.users.UpdateTwitterTokens(ctx, user.ID, pair.AccessToken, pair.RefreshToken); err != nil {
		return "", fmt.Errorf("storing refreshed tokens: %w", err)
	}
	user.TwitterAccessToken = pair.AccessToken
	user.TwitterRefreshToken = pair.RefreshToken

	return s.twitter.CreatePost(ctx, pair.AccessToken, content)
}

func publishDetail(err error) string {
	var apiErr *driven.TwitterAPIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}
