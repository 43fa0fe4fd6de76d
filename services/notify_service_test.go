package services

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matchday/attendance-system/models"
)

type fakeNotificationRepo struct {
	created []*models.Notification
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func TestNotifySendSuccess(t *testing.T) {
	var gotAuth, gotMessage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, r.ParseForm())
		gotMessage = r.PostFormValue("message")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	events := newFakeEventRepo()
	event := seedEvent(t, events)
	audit := &fakeNotificationRepo{}
	svc := NewNotifyService(events, audit, "test-token", server.URL, slog.Default())

	err := svc.Send(context.Background(), event.ID, models.NotificationTypeEventCreated)
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Contains(t, gotMessage, event.Title)
	assert.Contains(t, gotMessage, event.Location)

	require.Len(t, audit.created, 1)
	assert.Equal(t, models.NotificationStatusSent, audit.created[0].Status)
	assert.Nil(t, audit.created[0].ErrorMessage)
}

func TestNotifySendFailureIsAudited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	events := newFakeEventRepo()
	event := seedEvent(t, events)
	audit := &fakeNotificationRepo{}
	svc := NewNotifyService(events, audit, "test-token", server.URL, slog.Default())

	err := svc.Send(context.Background(), event.ID, models.NotificationTypeReminder)
	assert.ErrorIs(t, err, ErrNotificationFailed)

	require.Len(t, audit.created, 1)
	assert.Equal(t, models.NotificationStatusFailed, audit.created[0].Status)
	require.NotNil(t, audit.created[0].ErrorMessage)
	assert.Contains(t, *audit.created[0].ErrorMessage, "500")
}

func TestNotifySendValidation(t *testing.T) {
	events := newFakeEventRepo()
	event := seedEvent(t, events)
	audit := &fakeNotificationRepo{}
	svc := NewNotifyService(events, audit, "", "http://unused.invalid", slog.Default())

	err := svc.Send(context.Background(), event.ID, "broadcast")
	assert.ErrorIs(t, err, ErrInvalidNotificationType)

	err = svc.Send(context.Background(), "missing", models.NotificationTypeReminder)
	assert.ErrorIs(t, err, ErrEventNotFound)

	// Without a configured token nothing is pushed and nothing is audited.
	err = svc.Send(context.Background(), event.ID, models.NotificationTypeReminder)
	assert.ErrorIs(t, err, ErrNotifierNotConfigured)
	assert.Empty(t, audit.created)
}
