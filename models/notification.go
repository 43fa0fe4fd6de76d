package models

import "time"

const (
	NotificationTypeEventCreated = "event_created"
	NotificationTypeReminder     = "reminder"
)

const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification is an audit row for an outbound push message. Failed sends are
// recorded here and never retried.
type Notification struct {
	ID           string    `json:"id"`
	EventID      *string   `json:"event_id,omitempty"`
	Type         string    `json:"notification_type"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	SentAt       time.Time `json:"sent_at"`
}
