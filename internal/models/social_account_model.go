package models

import (
	"time"
)

const (
	ProviderMeta     = "meta"
	ProviderLinkedin = "linkedin"

	KindFacebook  = "facebook"
	KindInstagram = "instagram"
	KindLinkedin  = "linkedin"
)

// SocialAccount links one local user to one external provider identity.
// Facebook and Instagram both live under provider "meta" and are told apart
// by Kind; LinkedIn uses its own provider name.
//
// Extra is a schema-less metadata map. Recognized keys per provider:
// kind, name, profile_url, email, picture, expires_in, refresh_token.
type SocialAccount struct {
	ID          int64          `db:"id" json:"id"`
	UserID      int64          `db:"user_id" json:"user_id"`
	Provider    string         `db:"provider" json:"provider"`
	Kind        string         `db:"kind" json:"kind"`
	AccountID   string         `db:"account_id" json:"account_id"`
	AccountName string         `db:"account_name" json:"account_name"`
	AccessToken string         `db:"access_token" json:"-"`
	Extra       map[string]any `db:"extra" json:"extra"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}
