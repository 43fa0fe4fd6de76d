package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

type SettingsService interface {
	// Get returns the singleton team settings. The password hash never leaves
	// the model's json:"-" field.
	Get(ctx context.Context) (*models.TeamSettings, error)
	UpdateTitle(ctx context.Context, identity *models.Identity, appTitle string) (*models.TeamSettings, error)
	// UpdatePassword verifies the current shared password before replacing it.
	UpdatePassword(ctx context.Context, identity *models.Identity, currentPassword, newPassword string) error
}

type settingsService struct {
	settingsRepo repositories.TeamSettingsRepository
}

func NewSettingsService(settingsRepo repositories.TeamSettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo}
}

func (s *settingsService) Get(ctx context.Context) (*models.TeamSettings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamSettingsNotFound) {
			return nil, ErrTeamSettingsNotConfigured
		}
		return nil, fmt.Errorf("failed to load team settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) UpdateTitle(ctx context.Context, identity *models.Identity, appTitle string) (*models.TeamSettings, error) {
	if err := requireAdmin(identity); err != nil {
		return nil, err
	}
	appTitle = strings.TrimSpace(appTitle)
	if appTitle == "" {
		return nil, ErrAppTitleRequired
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.settingsRepo.UpdateTitle(ctx, settings.ID, appTitle); err != nil {
		return nil, fmt.Errorf("failed to update app title: %w", err)
	}
	settings.AppTitle = appTitle
	return settings, nil
}

func (s *settingsService) UpdatePassword(ctx context.Context, identity *models.Identity, currentPassword, newPassword string) error {
	if err := requireAdmin(identity); err != nil {
		return err
	}
	if currentPassword == "" || newPassword == "" {
		return ErrNewPasswordRequired
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(settings.TeamPasswordHash), []byte(currentPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrCurrentPasswordIncorrect
		}
		return fmt.Errorf("failed to compare current password hash: %w", err)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash new team password: %w", err)
	}

	if err := s.settingsRepo.UpdatePasswordHash(ctx, settings.ID, string(newHash)); err != nil {
		return fmt.Errorf("failed to update team password: %w", err)
	}
	return nil
}
