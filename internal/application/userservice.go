package application

import (
	"context"
	"fmt"

	"github.com/dgrier/commitcast/internal/domain/model"
	"github.com/dgrier/commitcast/internal/domain/port/driven"
)

// UserService exposes the account-level operations the API needs.
type UserService struct {
	users driven.UserStore
}

func NewUserService(users driven.UserStore) *UserService {
	return &UserService{users: users}
}

// UpdateVoiceSettings replaces the user's tweet voice configuration, which
// shapes every generation prompt from then on.
func (s *UserService) UpdateVoiceSettings(ctx context.Context, userID string, voice *model.VoiceSettings) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return driven.ErrUserNotFound
	}
	if err := s.users.UpdateVoiceSettings(ctx, userID, voice); err != nil {
		return fmt.Errorf("storing voice settings: %w", err)
	}
	return nil
}
