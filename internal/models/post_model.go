package models

import "time"

// Post is an immutable snapshot of one submission and its per-platform
// outcomes. It is written exactly once, after every requested publish has
// been attempted. Platforms holds the comma-joined display names of the
// providers that succeeded; empty means the post was only saved locally.
type Post struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Text         string    `db:"text" json:"text"`
	ImageURL     string    `db:"image_url" json:"image_url,omitempty"`
	Platforms    string    `db:"platforms" json:"platforms,omitempty"`
	FacebookURL  string    `db:"facebook_url" json:"facebook_url,omitempty"`
	InstagramURL string    `db:"instagram_url" json:"instagram_url,omitempty"`
	LinkedinURL  string    `db:"linkedin_url" json:"linkedin_url,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
