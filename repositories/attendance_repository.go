package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/matchday/attendance-system/models"
)

var (
	ErrAttendanceNotFound     = errors.New("attendance not found")
	ErrAttendanceEventInvalid = errors.New("attendance event conflict or invalid")
	ErrAttendanceUserInvalid  = errors.New("attendance user conflict or invalid")
)

type AttendanceRepository interface {
	// Upsert inserts the row for (event_id, user_id) or overwrites status and
	// comment in place. The unique constraint on the pair makes this safe
	// against concurrent submissions by the same user.
	Upsert(ctx context.Context, attendance *models.Attendance) error
	// GetByEventAndUser returns ErrAttendanceNotFound when the user has not
	// answered yet. An absent row is not the same as an explicit "undecided".
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*models.Attendance, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error)
}

type postgresAttendanceRepository struct {
	db *sql.DB
}

func NewPostgresAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &postgresAttendanceRepository{db: db}
}

func (r *postgresAttendanceRepository) Upsert(ctx context.Context, attendance *models.Attendance) error {
	query := `
		INSERT INTO attendances (event_id, user_id, status, comment)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id)
		DO UPDATE SET status = EXCLUDED.status, comment = EXCLUDED.comment, updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		attendance.EventID,
		attendance.UserID,
		attendance.Status,
		attendance.Comment,
	).Scan(&attendance.ID, &attendance.CreatedAt, &attendance.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "attendances_event_id_fkey":
				return ErrAttendanceEventInvalid
			case "attendances_user_id_fkey":
				return ErrAttendanceUserInvalid
			}
		}
		return fmt.Errorf("failed to upsert attendance: %w", err)
	}
	return nil
}

func (r *postgresAttendanceRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*models.Attendance, error) {
	query := `
		SELECT id, event_id, user_id, status, comment, created_at, updated_at
		FROM attendances
		WHERE event_id = $1 AND user_id = $2`

	attendance := &models.Attendance{}
	err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(
		&attendance.ID,
		&attendance.EventID,
		&attendance.UserID,
		&attendance.Status,
		&attendance.Comment,
		&attendance.CreatedAt,
		&attendance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceNotFound
		}
		return nil, fmt.Errorf("failed to scan attendance: %w", err)
	}
	return attendance, nil
}

func (r *postgresAttendanceRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Attendance, error) {
	query := `
		SELECT
			a.id, a.event_id, a.user_id, a.status, a.comment, a.created_at, a.updated_at,
			u.id, u.email, u.display_name, u.jersey_number, u.is_admin, u.avatar_key, u.created_at, u.updated_at
		FROM attendances a
		JOIN users u ON a.user_id = u.id
		WHERE a.event_id = $1
		ORDER BY a.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances by event: %w", err)
	}
	defer rows.Close()

	attendances := make([]models.Attendance, 0)
	for rows.Next() {
		var a models.Attendance
		var u models.User
		if err := rows.Scan(
			&a.ID, &a.EventID, &a.UserID, &a.Status, &a.Comment, &a.CreatedAt, &a.UpdatedAt,
			&u.ID, &u.Email, &u.DisplayName, &u.JerseyNumber, &u.IsAdmin, &u.AvatarKey, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		a.User = &u
		attendances = append(attendances, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}
	return attendances, nil
}
