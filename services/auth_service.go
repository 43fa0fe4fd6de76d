package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

type TeamLoginInput struct {
	Nickname     string `json:"nickname"`
	JerseyNumber *int   `json:"jerseyNumber"`
	TeamPassword string `json:"teamPassword"`
}

// TeamLoginResult carries the resolved user together with the issued session
// token; the handler turns the token into the team_session cookie.
type TeamLoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService interface {
	TeamLogin(ctx context.Context, input TeamLoginInput) (*TeamLoginResult, error)
}

type authService struct {
	userRepo     repositories.UserRepository
	settingsRepo repositories.TeamSettingsRepository
	sessions     *TeamSessionCodec
	now          func() time.Time
}

func NewAuthService(
	userRepo repositories.UserRepository,
	settingsRepo repositories.TeamSettingsRepository,
	sessions *TeamSessionCodec,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
		sessions:     sessions,
		now:          time.Now,
	}
}

// TeamLogin validates the shared team password, finds or creates the member
// for the nickname, and issues a 30-day session token.
//
// The order matters: the password is verified before any user lookup, so a
// wrong password never creates a user row and the error never reveals whether
// the nickname existed.
func (s *authService) TeamLogin(ctx context.Context, input TeamLoginInput) (*TeamLoginResult, error) {
	if input.Nickname == "" || input.TeamPassword == "" {
		return nil, ErrNicknameRequired
	}
	if input.JerseyNumber != nil && (*input.JerseyNumber < 0 || *input.JerseyNumber > 99) {
		return nil, ErrJerseyNumberOutOfRange
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamSettingsNotFound) {
			return nil, ErrTeamSettingsNotConfigured
		}
		return nil, fmt.Errorf("failed to load team settings: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(settings.TeamPasswordHash), []byte(input.TeamPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare team password hash: %w", err)
	}

	user, err := s.userRepo.FindByNameAndNumber(ctx, input.Nickname, input.JerseyNumber)
	if err != nil {
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up team member: %w", err)
		}
		// First login under this nickname: create the member. This insert is
		// the one place an unauthenticated request may write a user row; the
		// password check above is what authorizes it.
		user = &models.User{
			DisplayName:  input.Nickname,
			JerseyNumber: input.JerseyNumber,
		}
		if err := s.userRepo.CreateTeamMember(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create team member: %w", err)
		}
	}

	token, expiresAt, err := s.sessions.Issue(user.ID, input.Nickname, s.now())
	if err != nil {
		return nil, err
	}

	return &TeamLoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}
