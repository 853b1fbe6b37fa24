package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crosspost-labs/crosspost/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, userID int64) error
	GetByUserID(ctx context.Context, userID int64) (*models.Profile, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create is idempotent so the init call can be retried safely.
func (r *profileRepository) Create(ctx context.Context, userID int64) error {
	query := `INSERT INTO profiles (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	query := `SELECT user_id, created_at FROM profiles WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var p models.Profile
	err := row.Scan(&p.UserID, &p.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}
