package model

import "time"

// User is an account row. External identities (GitHub, Twitter) hang off the
// user as per-service IDs and tokens; session management lives outside this
// service entirely.
type User struct {
	ID                  string
	Email               string
	Name                string
	GitHubID            string
	GitHubAccessToken   string
	TwitterID           string
	TwitterAccessToken  string
	TwitterRefreshToken string
	Voice               *VoiceSettings
	Plan                string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasGitHub reports whether the user has a usable GitHub credential.
func (u User) HasGitHub() bool {
	return u.GitHubAccessToken != ""
}

// HasTwitter reports whether the user has a usable Twitter credential.
func (u User) HasTwitter() bool {
	return u.TwitterAccessToken != ""
}

// VoiceSettings steers draft generation style. Written by account settings;
// the generator only reads it.
type VoiceSettings struct {
	ProductDescription string   `json:"product_description,omitempty"`
	TargetAudience     string   `json:"target_audience,omitempty"`
	PreferredTone      string   `json:"preferred_tone,omitempty"`
	ExampleTweets      []string `json:"example_tweets,omitempty"`
}

// TokenPair is an OAuth2 access/refresh token pair returned by a token refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
