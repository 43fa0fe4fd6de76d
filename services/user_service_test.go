package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/storage"
)

type fakeUploader struct {
	uploaded []string
	deleted  []string
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: "https://cdn.example.com/" + key}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func TestSetupProfileTakesProviderID(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewUserService(users, nil)

	provider := &ProviderIdentity{UserID: "provider-user", Email: "alice@example.com"}
	user, err := svc.SetupProfile(context.Background(), provider, ProfileInput{DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "provider-user", user.ID)
	require.NotNil(t, user.Email)
	assert.Equal(t, "alice@example.com", *user.Email)

	// A second setup for the same account conflicts.
	_, err = svc.SetupProfile(context.Background(), provider, ProfileInput{DisplayName: "Alice"})
	assert.ErrorIs(t, err, ErrProfileAlreadyExists)

	_, err = svc.SetupProfile(context.Background(), nil, ProfileInput{DisplayName: "Alice"})
	assert.ErrorIs(t, err, ErrAuthenticationRequired)
}

func TestSetupProfileValidation(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, nil)
	provider := &ProviderIdentity{UserID: "provider-user"}

	_, err := svc.SetupProfile(context.Background(), provider, ProfileInput{DisplayName: "  "})
	assert.ErrorIs(t, err, ErrDisplayNameRequired)

	bad := -1
	_, err = svc.SetupProfile(context.Background(), provider, ProfileInput{DisplayName: "Alice", JerseyNumber: &bad})
	assert.ErrorIs(t, err, ErrJerseyNumberOutOfRange)
}

func TestUploadAvatarReplacesOldObject(t *testing.T) {
	users := &fakeUserRepo{}
	oldKey := "avatars/user-1/old"
	users.users = append(users.users, &models.User{ID: "user-1", DisplayName: "Alice", AvatarKey: &oldKey})

	uploader := &fakeUploader{}
	svc := NewUserService(users, uploader)

	user, err := svc.UploadAvatar(context.Background(), "user-1", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	require.Len(t, uploader.uploaded, 1)
	assert.True(t, strings.HasPrefix(uploader.uploaded[0], "avatars/user-1/"))
	assert.Equal(t, []string{oldKey}, uploader.deleted)
	require.NotNil(t, user.AvatarURL)
	assert.Equal(t, "https://cdn.example.com/"+uploader.uploaded[0], *user.AvatarURL)
}

func TestUploadAvatarWithoutUploader(t *testing.T) {
	svc := NewUserService(&fakeUserRepo{}, nil)

	_, err := svc.UploadAvatar(context.Background(), "user-1", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUploaderNotConfigured)
}
