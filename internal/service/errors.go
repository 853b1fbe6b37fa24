package service

import (
	"errors"
	"fmt"
)

// OAuth-flow errors abort the flow without touching the account store.
// Publish-flow errors are caught per provider and degrade to warnings.
var (
	ErrMissingAuthorizationCode = errors.New("missing authorization code")
	ErrTokenExchangeFailed      = errors.New("token exchange failed")
	ErrStateMismatch            = errors.New("oauth state mismatch")
	ErrNoAccountConnected       = errors.New("no connected account")
	ErrNoPagesFound             = errors.New("no pages found for this account")
	ErrImageRequired            = errors.New("instagram requires an image")
	ErrMediaCreationFailed      = errors.New("failed to create media container")
	ErrImageUploadFailed        = errors.New("image upload failed")
)

// PublishError surfaces a provider-reported failure (an "error" object or
// serviceErrorCode in the response body) with the provider's own message.
type PublishError struct {
	Provider string
	Message  string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}
