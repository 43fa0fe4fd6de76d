package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
	"github.com/matchday/attendance-system/storage"
)

type ProfileInput struct {
	DisplayName  string `json:"display_name"`
	JerseyNumber *int   `json:"jersey_number"`
}

type UserService interface {
	// SetupProfile creates the users row for a provider-verified account that
	// has none yet. The row takes the provider's user id, so both credential
	// paths resolve to the same identity afterwards.
	SetupProfile(ctx context.Context, provider *ProviderIdentity, input ProfileInput) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, userID, contentType string, file io.Reader) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

// NewUserService wires the roster service. uploader may be nil, in which case
// avatar uploads are rejected with ErrUploaderNotConfigured.
func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{userRepo: userRepo, uploader: uploader}
}

func (s *userService) SetupProfile(ctx context.Context, provider *ProviderIdentity, input ProfileInput) (*models.User, error) {
	if provider == nil {
		return nil, ErrAuthenticationRequired
	}
	if err := validateProfileInput(&input); err != nil {
		return nil, err
	}

	email := provider.Email
	user := &models.User{
		ID:           provider.UserID,
		DisplayName:  input.DisplayName,
		JerseyNumber: input.JerseyNumber,
	}
	if email != "" {
		user.Email = &email
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserIDConflict) || errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrProfileAlreadyExists
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return s.decorate(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*models.User, error) {
	if err := validateProfileInput(&input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.DisplayName = input.DisplayName
	user.JerseyNumber = input.JerseyNumber

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.decorate(user), nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID, contentType string, file io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	key := fmt.Sprintf("avatars/%s/%s", userID, uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	user.AvatarKey = &result.Key
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store avatar key: %w", err)
	}

	// Old object cleanup is best effort; a stray file is harmless.
	if oldKey != nil {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	return s.decorate(user), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.decorate(user), nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		s.decorate(&users[i])
	}
	return users, nil
}

func (s *userService) decorate(user *models.User) *models.User {
	if s.uploader != nil && user.AvatarKey != nil {
		publicURL := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &publicURL
	}
	return user
}

func validateProfileInput(input *ProfileInput) error {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return ErrDisplayNameRequired
	}
	if input.JerseyNumber != nil && (*input.JerseyNumber < 0 || *input.JerseyNumber > 99) {
		return ErrJerseyNumberOutOfRange
	}
	return nil
}
