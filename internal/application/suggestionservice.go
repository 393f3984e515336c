package application

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// validTransitions is the suggestion lifecycle. A missing key means the
// state is terminal for that path. Transitions to posted are excluded here
// on purpose: posting happens only through the publisher, which records
// the platform post ID alongside the status change.
var validTransitions = map[model.SuggestionStatus][]model.SuggestionStatus{
	model.StatusPending:  {model.StatusAccepted, model.StatusRejected},
	model.StatusAccepted: {model.StatusScheduled},
}

func canTransition(from, to model.SuggestionStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SuggestionService manages the tweet suggestion lifecycle: listing,
// status transitions, content edits, scheduling and deletion. Every
// operation verifies ownership before touching anything.
type SuggestionService struct {
	suggestions driven.SuggestionStore
}

func NewSuggestionService(suggestions driven.SuggestionStore) *SuggestionService {
	return &SuggestionService{suggestions: suggestions}
}

// List returns the user's suggestions, newest first, optionally filtered
// by status and commit.
func (s *SuggestionService) List(ctx context.Context, userID string, filter driven.SuggestionFilter) ([]model.TweetSuggestion, error) {
	return s.suggestions.ListByUser(ctx, userID, filter)
}

// Get returns one suggestion owned by the user.
func (s *SuggestionService) Get(ctx context.Context, userID, id string) (*model.TweetSuggestion, error) {
	return s.ownedSuggestion(ctx, userID, id)
}

// UpdateStatus moves a suggestion through the lifecycle. Accepting a
// suggestion re-validates its displayable length so an over-budget draft
// can never be approved.
func (s *SuggestionService) UpdateStatus(ctx context.Context, userID, id string, status model.SuggestionStatus) (*model.TweetSuggestion, error) {
	suggestion, err := s.ownedSuggestion(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !canTransition(suggestion.Status, status) {
		return nil, fmt.Errorf("%s to %s: %w", suggestion.Status, status, ErrInvalidTransition)
	}
	if status == model.StatusAccepted && !model.ValidPostLength(suggestion.Content) {
		return nil, ErrContentTooLong
	}

	if err := s.suggestions.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}
	suggestion.Status = status
	return suggestion, nil
}

// UpdateContent rewrites a suggestion's text. Edits are allowed only while
// the suggestion is pending or accepted, and the new content must fit the
// displayable-length budget.
func (s *SuggestionService) UpdateContent(ctx context.Context, userID, id, content string) (*model.TweetSuggestion, error) {
	suggestion, err := s.ownedSuggestion(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if suggestion.Status != model.StatusPending && suggestion.Status != model.StatusAccepted {
		return nil, ErrNotEditable
	}
	if !model.ValidPostLength(content) {
		return nil, ErrContentTooLong
	}

	if err := s.suggestions.UpdateContent(ctx, id, content); err != nil {
		return nil, fmt.Errorf("updating content: %w", err)
	}
	suggestion.Content = content
	return suggestion, nil
}

// Schedule marks an accepted suggestion for later posting.
func (s *SuggestionService) Schedule(ctx context.Context, userID, id string, scheduledFor time.Time) (*model.TweetSuggestion, error) {
	suggestion, err := s.ownedSuggestion(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if !canTransition(suggestion.Status, model.StatusScheduled) {
		return nil, fmt.Errorf("%s to %s: %w", suggestion.Status, model.StatusScheduled, ErrInvalidTransition)
	}

	if err := s.suggestions.MarkScheduled(ctx, id, scheduledFor); err != nil {
		return nil, fmt.Errorf("scheduling suggestion: %w", err)
	}
	suggestion.Status = model.StatusScheduled
	suggestion.ScheduledFor = &scheduledFor
	return suggestion, nil
}

// Delete removes a suggestion. Posted suggestions are kept as a permanent
// record of what went out.
func (s *SuggestionService) Delete(ctx context.Context, userID, id string) error {
	suggestion, err := s.ownedSuggestion(ctx, userID, id)
	if err != nil {
		return err
	}
	if suggestion.Status == model.StatusPosted {
		return ErrSuggestionPosted
	}
	return s.suggestions.Delete(ctx, id)
}

// ShareURL returns a web intent URL that opens the platform's composer
// pre-filled with the content, for manual posting without a connected
// account.
func ShareURL(content string) string {
	return "https://twitter.com/intent/tweet?text=" + url.QueryEscape(content)
}

func (s *SuggestionService) ownedSuggestion(ctx context.Context, userID, id string) (*model.TweetSuggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading suggestion: %w", err)
	}
	if suggestion == nil {
		return nil, driven.ErrSuggestionNotFound
	}
	if suggestion.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return suggestion, nil
}
