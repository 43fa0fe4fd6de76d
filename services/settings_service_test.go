package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSettingsUpdateTitle(t *testing.T) {
	repo := settingsWithPassword(t, "team-pass")
	svc := NewSettingsService(repo)

	_, err := svc.UpdateTitle(context.Background(), memberIdentity(), "FC Riverside")
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	_, err = svc.UpdateTitle(context.Background(), adminIdentity(), "   ")
	assert.ErrorIs(t, err, ErrAppTitleRequired)

	settings, err := svc.UpdateTitle(context.Background(), adminIdentity(), "  FC Riverside  ")
	require.NoError(t, err)
	assert.Equal(t, "FC Riverside", settings.AppTitle)
	assert.Equal(t, "FC Riverside", repo.settings.AppTitle)
}

func TestSettingsUpdatePassword(t *testing.T) {
	repo := settingsWithPassword(t, "old-pass")
	svc := NewSettingsService(repo)

	err := svc.UpdatePassword(context.Background(), adminIdentity(), "wrong", "new-pass")
	assert.ErrorIs(t, err, ErrCurrentPasswordIncorrect)

	err = svc.UpdatePassword(context.Background(), adminIdentity(), "old-pass", "")
	assert.ErrorIs(t, err, ErrNewPasswordRequired)

	require.NoError(t, svc.UpdatePassword(context.Background(), adminIdentity(), "old-pass", "new-pass"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.settings.TeamPasswordHash), []byte("new-pass")))
}

func TestSettingsGetNotConfigured(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{})

	_, err := svc.Get(context.Background())
	assert.ErrorIs(t, err, ErrTeamSettingsNotConfigured)
}
