package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"friendly/internal/models"
	"friendly/internal/storage"
)

// ProfileUpdate carries the editable profile fields. Nil pointers leave
// the stored value untouched.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Hobbies      *string
	Interests    *string
	Zipcode      *string
	FriendRadius *int
	ImageURL     *string
}

// UserService defines the interface for profile operations.
type UserService interface {
	Profile(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*models.User, error)
}

type userService struct {
	userRepo storage.UserRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo storage.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) Profile(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update, re-validating the
// ones with constraints.
func (s *userService) UpdateProfile(ctx context.Context, username string, update ProfileUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", username, err)
	}

	changed := false
	if update.FirstName != nil {
		if l := len(*update.FirstName); l < 1 || l > 50 {
			return nil, fmt.Errorf("%w: first name must be 1-50 characters", ErrInvalidInput)
		}
		user.FirstName = *update.FirstName
		changed = true
	}
	if update.LastName != nil {
		if l := len(*update.LastName); l < 1 || l > 30 {
			return nil, fmt.Errorf("%w: last name must be 1-30 characters", ErrInvalidInput)
		}
		user.LastName = *update.LastName
		changed = true
	}
	if update.Hobbies != nil {
		user.Hobbies = *update.Hobbies
		changed = true
	}
	if update.Interests != nil {
		user.Interests = *update.Interests
		changed = true
	}
	if update.Zipcode != nil {
		if !zipcodePattern.MatchString(*update.Zipcode) {
			return nil, fmt.Errorf("%w: zipcode must be exactly 5 digits", ErrInvalidInput)
		}
		user.Zipcode = *update.Zipcode
		changed = true
	}
	if update.FriendRadius != nil {
		if *update.FriendRadius < 1 || *update.FriendRadius > 50 {
			return nil, fmt.Errorf("%w: friend radius must be between 1 and 50", ErrInvalidInput)
		}
		user.FriendRadius = *update.FriendRadius
		changed = true
	}
	if update.ImageURL != nil {
		user.ImageURL = *update.ImageURL
		changed = true
	}

	if !changed {
		return user, nil
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", username, err)
	}
	return user, nil
}
