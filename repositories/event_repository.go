package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/matchday/attendance-system/models"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrEventCreatorInvalid = errors.New("event creator conflict or invalid")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	// GetDetailByID reads from the event_details view, so the attendance
	// counts are always the live ones.
	GetDetailByID(ctx context.Context, id string) (*models.EventDetail, error)
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.EventDetail, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateGuestCount(ctx context.Context, id string, count int) error
	// Delete removes the event together with all its attendance rows in a
	// single transaction.
	Delete(ctx context.Context, id string) error
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, title, description, location, start_time, end_time, max_participants, participation_fee, guest_count, created_by, created_at, updated_at`

const eventDetailColumns = eventColumns + `, attending_count, not_attending_count, undecided_count, total_participants`

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, location, start_time, end_time, max_participants, participation_fee, guest_count, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.MaxParticipants,
		event.ParticipationFee,
		event.GuestCount,
		event.CreatedBy,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			if pqErr.Constraint == "events_created_by_fkey" {
				return ErrEventCreatorInvalid
			}
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&event.MaxParticipants,
		&event.ParticipationFee,
		&event.GuestCount,
		&event.CreatedBy,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return event, nil
}

func (r *postgresEventRepository) GetDetailByID(ctx context.Context, id string) (*models.EventDetail, error) {
	query := `SELECT ` + eventDetailColumns + ` FROM event_details WHERE id = $1`

	detail := &models.EventDetail{}
	err := r.scanDetail(r.db.QueryRowContext(ctx, query, id), detail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event detail: %w", err)
	}
	return detail, nil
}

func (r *postgresEventRepository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.EventDetail, error) {
	query := `
		SELECT ` + eventDetailColumns + `
		FROM event_details
		WHERE start_time >= $1
		ORDER BY start_time ASC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, from, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()

	details := make([]models.EventDetail, 0)
	for rows.Next() {
		var detail models.EventDetail
		if err := r.scanDetail(rows, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan event detail row: %w", err)
		}
		details = append(details, detail)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events SET
			title = $1,
			description = $2,
			location = $3,
			start_time = $4,
			end_time = $5,
			max_participants = $6,
			participation_fee = $7,
			updated_at = NOW()
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.MaxParticipants,
		event.ParticipationFee,
		event.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) UpdateGuestCount(ctx context.Context, id string, count int) error {
	query := `UPDATE events SET guest_count = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, count, id)
	if err != nil {
		return fmt.Errorf("failed to update guest count: %w", err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin event deletion: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendances WHERE event_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete event attendances: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if err := checkAffectedRows(result, ErrEventNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event deletion: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) scanDetail(rowScanner interface {
	Scan(dest ...interface{}) error
}, detail *models.EventDetail) error {
	err := rowScanner.Scan(
		&detail.ID,
		&detail.Title,
		&detail.Description,
		&detail.Location,
		&detail.StartTime,
		&detail.EndTime,
		&detail.MaxParticipants,
		&detail.ParticipationFee,
		&detail.GuestCount,
		&detail.CreatedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.AttendingCount,
		&detail.NotAttendingCount,
		&detail.UndecidedCount,
		&detail.TotalParticipants,
	)
	if err != nil {
		return err
	}
	detail.RecalculateIsFull()
	return nil
}
