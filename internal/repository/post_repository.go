package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/crosspost-labs/crosspost/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error)
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

// Create writes the finished outcome snapshot. Empty optional fields are
// stored as NULL so "never published" is distinguishable in the data.
func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, text, image_url, platforms, facebook_url, instagram_url, linkedin_url)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.UserID,
		post.Text,
		post.ImageURL,
		post.Platforms,
		post.FacebookURL,
		post.InstagramURL,
		post.LinkedinURL,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `
		SELECT id, user_id, text, COALESCE(image_url, ''), COALESCE(platforms, ''),
			COALESCE(facebook_url, ''), COALESCE(instagram_url, ''), COALESCE(linkedin_url, ''), created_at
		FROM posts WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var post models.Post
	err := row.Scan(&post.ID, &post.UserID, &post.Text, &post.ImageURL, &post.Platforms,
		&post.FacebookURL, &post.InstagramURL, &post.LinkedinURL, &post.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	query := `
		SELECT id, user_id, text, COALESCE(image_url, ''), COALESCE(platforms, ''),
			COALESCE(facebook_url, ''), COALESCE(instagram_url, ''), COALESCE(linkedin_url, ''), created_at
		FROM posts WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		var post models.Post
		err := rows.Scan(&post.ID, &post.UserID, &post.Text, &post.ImageURL, &post.Platforms,
			&post.FacebookURL, &post.InstagramURL, &post.LinkedinURL, &post.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
