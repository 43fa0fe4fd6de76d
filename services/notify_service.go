package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matchday/attendance-system/models"
	"github.com/matchday/attendance-system/monitoring"
	"github.com/matchday/attendance-system/repositories"
)

// DefaultPushEndpoint is the LINE Notify message API.
const DefaultPushEndpoint = "https://notify-api.line.me/api/notify"

type NotifyService interface {
	// Send pushes a formatted message for the event and records an audit row
	// with the outcome. A failed push is recorded as status=failed and the
	// error returned; it is never retried.
	Send(ctx context.Context, eventID, notificationType string) error
}

type notifyService struct {
	eventRepo        repositories.EventRepository
	notificationRepo repositories.NotificationRepository
	token            string
	endpoint         string
	client           *http.Client
	logger           *slog.Logger
}

func NewNotifyService(
	eventRepo repositories.EventRepository,
	notificationRepo repositories.NotificationRepository,
	token string,
	endpoint string,
	logger *slog.Logger,
) NotifyService {
	if endpoint == "" {
		endpoint = DefaultPushEndpoint
	}
	return &notifyService{
		eventRepo:        eventRepo,
		notificationRepo: notificationRepo,
		token:            token,
		endpoint:         endpoint,
		client:           &http.Client{Timeout: 10 * time.Second},
		logger:           logger,
	}
}

func (s *notifyService) Send(ctx context.Context, eventID, notificationType string) error {
	if notificationType != models.NotificationTypeEventCreated && notificationType != models.NotificationTypeReminder {
		return ErrInvalidNotificationType
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to load event for notification: %w", err)
	}

	if s.token == "" {
		return ErrNotifierNotConfigured
	}

	message := buildMessage(event, notificationType)

	if err := s.push(ctx, message); err != nil {
		s.logger.Error("push notification failed",
			slog.String("event_id", eventID),
			slog.String("type", notificationType),
			slog.Any("error", err),
		)
		s.record(ctx, eventID, notificationType, models.NotificationStatusFailed, err)
		monitoring.TrackNotification(notificationType, models.NotificationStatusFailed)
		return ErrNotificationFailed
	}

	s.record(ctx, eventID, notificationType, models.NotificationStatusSent, nil)
	monitoring.TrackNotification(notificationType, models.NotificationStatusSent)
	return nil
}

func (s *notifyService) push(ctx context.Context, message string) error {
	form := url.Values{"message": {message}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push API returned status %d", resp.StatusCode)
	}
	return nil
}

// record writes the audit row. A failure to write the audit itself is only
// logged — the notification outcome has already been decided at that point.
func (s *notifyService) record(ctx context.Context, eventID, notificationType, status string, sendErr error) {
	notification := &models.Notification{
		EventID: &eventID,
		Type:    notificationType,
		Status:  status,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		notification.ErrorMessage = &msg
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("failed to record notification audit row",
			slog.String("event_id", eventID),
			slog.Any("error", err),
		)
	}
}

func buildMessage(event *models.Event, notificationType string) string {
	when := event.StartTime.Format("Mon Jan 2 15:04")
	if notificationType == models.NotificationTypeReminder {
		return fmt.Sprintf(
			"\n⚽ Event reminder\n\n📅 %s\n📍 %s\n🕐 tomorrow at %s\n\nPlease register your attendance if you haven't yet!",
			event.Title, event.Location, event.StartTime.Format("15:04"),
		)
	}
	return fmt.Sprintf(
		"\n⚽ A new event has been created!\n\n📅 %s\n📍 %s\n🕐 %s\n\nPlease register your attendance!",
		event.Title, event.Location, when,
	)
}
