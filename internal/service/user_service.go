package service

import (
	"context"
	"unicode/utf8"

	"basspress/internal/models"
	"basspress/internal/repository"
)

// UserService handles profile reads and updates.
type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	UserID    uint
	FirstName string
	LastName  string
	Bio       string
	Avatar    string
	Location  string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]models.User, error) {
	if filter.Role != "" && !models.ValidRole(filter.Role) {
		return nil, models.NewValidationError("Unknown role filter")
	}
	return s.userRepo.List(ctx, filter)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 500
	const maxNameLen = 50

	if in.FirstName != "" {
		if utf8.RuneCountInString(in.FirstName) > maxNameLen {
			return nil, models.NewValidationError("First name too long (max 50 characters)")
		}
		user.FirstName = in.FirstName
	}
	if in.LastName != "" {
		if utf8.RuneCountInString(in.LastName) > maxNameLen {
			return nil, models.NewValidationError("Last name too long (max 50 characters)")
		}
		user.LastName = in.LastName
	}
	if in.Bio != "" {
		if utf8.RuneCountInString(in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = in.Bio
	}
	if in.Avatar != "" {
		user.Avatar = in.Avatar
	}
	if in.Location != "" {
		user.Location = in.Location
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
