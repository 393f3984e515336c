// Package application contains use-case orchestration services.
package application

import (
	"errors"
	"fmt"
)

// Validation errors surfaced to callers. No mutation happens when one of
// these is returned.
var (
	// ErrNotAuthorized indicates the entity belongs to a different user.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidTransition indicates the requested status change is not
	// allowed from the suggestion's current state.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrContentTooLong indicates the content exceeds the platform's
	// 280-unit displayable-length budget.
	ErrContentTooLong = errors.New("content exceeds the 280 character limit")

	// ErrNotEditable indicates content edits are only permitted while a
	// suggestion is pending or accepted.
	ErrNotEditable = errors.New("content can only be edited while pending or accepted")

	// ErrSuggestionPosted indicates a posted suggestion cannot be deleted.
	ErrSuggestionPosted = errors.New("posted suggestions cannot be deleted")
)

// PublishError is the final failure of a publish attempt, after the single
// refresh-and-retry cycle. Detail carries the platform's error description.
type PublishError struct {
	Detail string
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed: %s", e.Detail)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
