package models

import "time"

// Profile is the per-user row this service owns. Identity itself lives with
// the external login provider; the profile is created by an explicit init
// call after registration, not by a side-effect hook.
type Profile struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
