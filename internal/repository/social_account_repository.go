package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/crosspost-labs/crosspost/internal/models"
)

type SocialAccountRepository interface {
	Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error)
	GetByKind(ctx context.Context, userID int64, provider, kind string) (*models.SocialAccount, error)
	ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	RemoveByKind(ctx context.Context, userID int64, provider, kind string) error
}

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

// Upsert overwrites any existing row for the same (user, provider, kind).
// Reconnecting an account replaces the stored token and metadata instead of
// creating a duplicate.
func (r *socialAccountRepository) Upsert(ctx context.Context, sa *models.SocialAccount) (int64, error) {
	extra, err := json.Marshal(sa.Extra)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO social_accounts (user_id, provider, kind, account_id, account_name, access_token, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, provider, kind) DO UPDATE
		SET account_id = EXCLUDED.account_id,
			account_name = EXCLUDED.account_name,
			access_token = EXCLUDED.access_token,
			extra = EXCLUDED.extra,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		sa.UserID,
		sa.Provider,
		sa.Kind,
		sa.AccountID,
		sa.AccountName,
		sa.AccessToken,
		extra,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *socialAccountRepository) GetByKind(ctx context.Context, userID int64, provider, kind string) (*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, provider, kind, account_id, account_name, access_token, extra, created_at, updated_at
		FROM social_accounts
		WHERE user_id = $1 AND provider = $2 AND kind = $3
	`
	row := r.db.QueryRowContext(ctx, query, userID, provider, kind)

	var sa models.SocialAccount
	var extra []byte
	err := row.Scan(&sa.ID, &sa.UserID, &sa.Provider, &sa.Kind, &sa.AccountID,
		&sa.AccountName, &sa.AccessToken, &extra, &sa.CreatedAt, &sa.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &sa.Extra); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
	}

	return &sa, nil
}

// ListByUserID returns account rows without the stored token, for display.
func (r *socialAccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	query := `
		SELECT id, user_id, provider, kind, account_id, account_name, extra, created_at
		FROM social_accounts
		WHERE user_id = $1
		ORDER BY provider, kind
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.SocialAccount
	for rows.Next() {
		var sa models.SocialAccount
		var extra []byte
		err := rows.Scan(&sa.ID, &sa.UserID, &sa.Provider, &sa.Kind, &sa.AccountID,
			&sa.AccountName, &extra, &sa.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &sa.Extra); err != nil {
				slog.Info(err.Error())
				return nil, err
			}
		}
		accounts = append(accounts, &sa)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return accounts, nil
}

func (r *socialAccountRepository) RemoveByKind(ctx context.Context, userID int64, provider, kind string) error {
	query := `DELETE FROM social_accounts WHERE user_id = $1 AND provider = $2 AND kind = $3`
	_, err := r.db.ExecContext(ctx, query, userID, provider, kind)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
