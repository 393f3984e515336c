package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgrier/commitcast/internal/application"
	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

func twitterUser(id string) *model.User {
	return &model.User{
		ID:                  id,
		Email:               id + "@example.com",
		TwitterID:           "tw-" + id,
		TwitterAccessToken:  "access-old",
		TwitterRefreshToken: "refresh-old",
	}
}

func TestPublishService_Publish(t *testing.T) {
	users := newMockUserStore(twitterUser("u1"))
	store := newMockSuggestionStore(suggestion("s1", "u1", model.StatusAccepted))
	tw := &mockTwitterClient{
		createPost: func(context.Context, string, string) (string, error) {
			return "1780000000000000000", nil
		},
	}
	svc := application.NewPublishService(users, store, tw)

	got, err := svc.Publish(context.Background(), "u1", "s1")
	require.NoError(t, err)

	assert.Equal(t, model.StatusPosted, got.Status)
	assert.Equal(t, "1780000000000000000", got.TweetID)
	require.NotNil(t, got.PostedAt)

	require.Len(t, tw.postCalls, 1)
	assert.Equal(t, "access-old", tw.postCalls[0].AccessToken)
	assert.Equal(t, "just shipped a rate limiter", tw.postCalls[0].Text)
	assert.Zero(t, tw.refreshCalls)

	require.Len(t, store.posted, 1)
	assert.Equal(t, "1780000000000000000", store.posted[0].TweetID)
}

func TestPublishService_Publish_ScheduledAlsoPosts(t *testing.T) {
	users := newMockUserStore(twitterUser("u1"))
	store := newMockSuggestionStore(suggestion("s1", "u1", model.StatusScheduled))
	tw := &mockTwitterClient{
		createPost: func(context.Context, string, string) (string, error) {
			return "123", nil
		},
	}
	svc := application.NewPublishService(users, store, tw)

	got, err := svc.Publish(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPosted, got.Status)
}

func TestPublishService_Publish_RefreshRetry(t *testing.T) {
	users := newMockUserStore(twitterUser("u1"))
	store := newMockSuggestionStore(suggestion("s1", "u1", model.StatusAccepted))

	tw := &mockTwitterClient{}
	tw.createPost = func(_ context.Context, accessToken, _ string) (string, error) {
		if accessToken == "access-old" {
			return "", driven.ErrTwitterUnauthorized
		}
		return "456", nil
	}
	tw.refreshToken = func(_ context.Context, refreshToken string) (*model.TokenPair, error) {
		assert.Equal(t, "refresh-old", refreshToken)
		return &model.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}, nil
	}

	svc := application.NewPublishService(users, store, tw)

	got, err := svc.Publish(context.Background(), "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "456", got.TweetID)

	// Exactly one refresh, exactly two post attempts.
	assert.Equal(t, 1, tw.refreshCalls)
	require.Len(t, tw.postCalls, 2)
	assert.Equal(t, "access-new", tw.postCalls[1].AccessToken)

	// New tokens were persisted before the retry.
	require.Len(t, users.tokenCalls, 1)
	assert.Equal(t, tokenCall{UserID: "u1", AccessToken: "access-new", RefreshToken: "refresh-new"}, users.tokenCalls[0])
}

func TestPublishService_Publish_RefreshFails(t *testing.T) {
	users := newMockUserStore(twitterUser("u1"))
	store := newMockSuggestionStore(suggestion("s1", "u1", model.StatusAccepted))

	tw := &mockTwitterClient{
		createPost: func(context.Context, string, string) (string, error) {
			return "", driven.ErrTwitterUnauthorized
		},
		refreshToken: func(context.Context, string) (*model.TokenPair, error) {
			return nil, errors.New("invalid_grant")
		},
	}
	svc := application.NewPublishService(users, store, tw)

	_, err := svc.Publish(context.Background(), "u1", "s1")

	var publishErr *application.PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.Equal(t, 1, tw.refreshCalls)
	assert.Len(t, tw.postCalls, 1, "no retry without fresh tokens")
	assert.Equal(t, model.StatusAccepted, store.suggestions["s1"].Status, "failed publish leaves the suggestion untouched")
}

func TestPublishService_Publish_RetryFailsOnce(t *testing.T) {
	users := newMockUserStore(twitterUser("u1"))
	store := newMockSuggestionStore(suggestion("s1", "u1", model.StatusAccepted))

	tw := &mockTwitterClient{
		createPost: func(context.Context, string, string) (string, error) {
			return "", driven.ErrTwitterUnauthorized
		},
		refreshToken: func(context.Context, string) (*model.TokenPair, error) {
			return &model.TokenPair{AccessToken: "access-new", RefreshToken: "refresh-new"}, nil
		},
	}
	svc := application.NewPublishService(users, store, tw)

	_, err := svc.Publish(context.Background(), "u1", "s1")

	var publishErr *application.PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.Equal(t, 1, tw.refreshCalls, "one refresh cycle only, even when the retry is rejected too")
	assert.Len(t, tw.postCalls, 2)
}

func TestPublishService_Publish_APIErrorDetail(t *testing.T) {
	users := newMockUserStore(twitterUser("u1"))
	store := newMockSuggestionStore(suggestion("s1", "u1", model.StatusAccepted))

	tw := &mockTwitterClient{
		createPost: func(context.Context, string, string) (string, error) {
			return "", &driven.TwitterAPIError{StatusCode: 403, Detail: "You are not allowed to create a Tweet with duplicate content."}
		},
	}
	svc := application.NewPublishService(users, store, tw)

	_, err := svc.Publish(context.Background(), "u1", "s1")

	var publishErr *application.PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.Equal(t, "You are not allowed to create a Tweet with duplicate content.", publishErr.Detail)
	assert.Zero(t, tw.refreshCalls, "only auth failures trigger a refresh")
}

func TestPublishService_Publish_Preconditions(t *testing.T) {
	noTwitter := &model.User{ID: "u2", Email: "b@example.com"}
	users := newMockUserStore(twitterUser("u1"), noTwitter)
	store := newMockSuggestionStore(
		suggestion("s1", "u1", model.StatusAccepted),
		suggestion("pending", "u1", model.StatusPending),
	)
	tw := &mockTwitterClient{}
	svc := application.NewPublishService(users, store, tw)
	ctx := context.Background()

	_, err := svc.Publish(ctx, "ghost", "s1")
	assert.ErrorIs(t, err, driven.ErrUserNotFound)

	_, err = svc.Publish(ctx, "u2", "s1")
	assert.ErrorIs(t, err, driven.ErrTwitterNotConnected)

	_, err = svc.Publish(ctx, "u1", "ghost")
	assert.ErrorIs(t, err, driven.ErrSuggestionNotFound)

	_, err = svc.Publish(ctx, "u1", "pending")
	assert.ErrorIs(t, err, application.ErrInvalidTransition)

	assert.Empty(t, tw.postCalls, "precondition failures never reach the platform")
}
