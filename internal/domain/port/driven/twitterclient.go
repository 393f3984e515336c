package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgrier/commitcast/internal/domain/model"
)

// Sentinel errors returned by TwitterClient implementations.
var (
	// ErrTwitterNotConnected indicates the user has no usable Twitter credential.
	ErrTwitterNotConnected = errors.New("twitter account not connected")

	// ErrTwitterUnauthorized indicates the platform rejected the access token.
	// The publisher refreshes once and retries once on this error.
	ErrTwitterUnauthorized = errors.New("twitter access token rejected")
)

// TwitterAPIError is a non-authorization failure from the Twitter API,
// carrying the platform's error detail for the caller.
type TwitterAPIError struct {
	StatusCode int
	Detail     string
}

func (e *TwitterAPIError) Error() string {
	return fmt.Sprintf("twitter api error (status %d): %s", e.StatusCode, e.Detail)
}

// TwitterClient defines the driven port for the Twitter API.
type TwitterClient interface {
	// CreatePost publishes text and returns the remote post ID. Returns
	// ErrTwitterUnauthorized when the access token is rejected, or a
	// *TwitterAPIError for any other platform failure. The API exposes no
	// idempotency key, so a retried call may double-post.
	CreatePost(ctx context.Context, accessToken, text string) (string, error)

	// RefreshToken exchanges a refresh token for a new access/refresh pair
	// via the OAuth2 refresh-token grant.
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenPair, error)
}
