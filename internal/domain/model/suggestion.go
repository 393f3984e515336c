package model

import "time"

// TweetSuggestion is one generated draft post. CommitID is nil when the
// source commit was deleted or the draft combines multiple commits.
type TweetSuggestion struct {
	ID           string
	UserID       string
	CommitID     *string
	Content      string
	Tone         Tone
	TweetType    TweetType
	Status       SuggestionStatus
	ScheduledFor *time.Time
	PostedAt     *time.Time
	TweetID      string // Remote post identifier, set after publishing.
	CreatedAt    time.Time
}

// TweetDraft is a generated draft before it becomes a persisted suggestion.
type TweetDraft struct {
	Content   string
	Tone      Tone
	TweetType TweetType
}
