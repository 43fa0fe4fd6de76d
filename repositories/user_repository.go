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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserIDConflict    = errors.New("user id conflict")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	// Create inserts a user whose id is already known (the identity provider's
	// user id, assigned during profile setup).
	Create(ctx context.Context, user *models.User) error
	// CreateTeamMember inserts a team-login user with a generated id, no email
	// and is_admin always false.
	CreateTeamMember(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	// FindByNameAndNumber matches (display_name, jersey_number) with NULL-aware
	// comparison on the jersey number.
	FindByNameAndNumber(ctx context.Context, displayName string, jerseyNumber *int) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, email, display_name, jersey_number, is_admin, avatar_key, created_at, updated_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, display_name, jersey_number, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID,
		user.Email,
		user.DisplayName,
		user.JerseyNumber,
		user.IsAdmin,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			switch pqErr.Constraint {
			case "users_pkey":
				return ErrUserIDConflict
			case "users_email_key":
				return ErrUserEmailConflict
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *postgresUserRepository) CreateTeamMember(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, display_name, jersey_number, is_admin)
		VALUES (NULL, $1, $2, FALSE)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.DisplayName,
		user.JerseyNumber,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create team member: %w", err)
	}

	user.Email = nil
	user.IsAdmin = false
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) FindByNameAndNumber(ctx context.Context, displayName string, jerseyNumber *int) (*models.User, error) {
	// IS NOT DISTINCT FROM makes a NULL jersey number match a NULL column,
	// which is how team logins without a number find their previous user row.
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE display_name = $1 AND jersey_number IS NOT DISTINCT FROM $2`

	var number sql.NullInt64
	if jerseyNumber != nil {
		number = sql.NullInt64{Int64: int64(*jerseyNumber), Valid: true}
	}
	return r.scanUser(ctx, query, displayName, number)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			email = $1,
			display_name = $2,
			jersey_number = $3,
			is_admin = $4,
			avatar_key = $5,
			updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.DisplayName,
		user.JerseyNumber,
		user.IsAdmin,
		user.AvatarKey,
		user.ID,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_email_key" {
				return ErrUserEmailConflict
			}
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return checkAffectedRows(result, ErrUserNotFound)
}

func (r *postgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY display_name ASC, jersey_number ASC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.DisplayName,
			&user.JerseyNumber,
			&user.IsAdmin,
			&user.AvatarKey,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.DisplayName,
		&user.JerseyNumber,
		&user.IsAdmin,
		&user.AvatarKey,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}
