package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matchday/attendance-system/models"
)

var ErrTeamSettingsNotFound = errors.New("team settings not found")

type TeamSettingsRepository interface {
	// Get returns the singleton settings row. Its absence indicates a
	// deployment misconfiguration, not a normal runtime condition.
	Get(ctx context.Context) (*models.TeamSettings, error)
	UpdateTitle(ctx context.Context, id, appTitle string) error
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) error
}

type postgresTeamSettingsRepository struct {
	db *sql.DB
}

func NewPostgresTeamSettingsRepository(db *sql.DB) TeamSettingsRepository {
	return &postgresTeamSettingsRepository{db: db}
}

func (r *postgresTeamSettingsRepository) Get(ctx context.Context) (*models.TeamSettings, error) {
	query := `SELECT id, app_title, team_password_hash, updated_at FROM team_settings LIMIT 1`

	settings := &models.TeamSettings{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&settings.ID,
		&settings.AppTitle,
		&settings.TeamPasswordHash,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamSettingsNotFound
		}
		return nil, fmt.Errorf("failed to scan team settings: %w", err)
	}
	return settings, nil
}

func (r *postgresTeamSettingsRepository) UpdateTitle(ctx context.Context, id, appTitle string) error {
	query := `UPDATE team_settings SET app_title = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, appTitle, id)
	if err != nil {
		return fmt.Errorf("failed to update app title: %w", err)
	}
	return checkAffectedRows(result, ErrTeamSettingsNotFound)
}

func (r *postgresTeamSettingsRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE team_settings SET team_password_hash = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update team password hash: %w", err)
	}
	return checkAffectedRows(result, ErrTeamSettingsNotFound)
}
