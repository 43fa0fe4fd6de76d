package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/matchday/attendance-system/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	query := `
		INSERT INTO notifications (event_id, notification_type, status, error_message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, sent_at`

	err := r.db.QueryRowContext(ctx, query,
		notification.EventID,
		notification.Type,
		notification.Status,
		notification.ErrorMessage,
	).Scan(&notification.ID, &notification.SentAt)
	if err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}
	return nil
}
