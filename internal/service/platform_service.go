package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/models"
	"github.com/crosspost-labs/crosspost/internal/repository"
	"github.com/crosspost-labs/crosspost/pkg/utils"
	"golang.org/x/oauth2/linkedin"
)

type PlatformService interface {
	GetAuthURL(ctx context.Context, platform string, userID int64) (string, error)
	List(ctx context.Context, userID int64) ([]*models.SocialAccount, error)
	Delete(ctx context.Context, userID int64, platform string) error
}

type platformService struct {
	cfg    config.Config
	sa     repository.SocialAccountRepository
	states StateStore
}

func NewPlatformService(cfg config.Config, sa repository.SocialAccountRepository, states StateStore) PlatformService {
	return &platformService{
		cfg:    cfg,
		sa:     sa,
		states: states,
	}
}

// GetAuthURL builds the provider's authorization redirect. LinkedIn gets a
// random single-use state token stashed per user; the Meta dialect here does
// not carry state.
func (s *platformService) GetAuthURL(ctx context.Context, platform string, userID int64) (string, error) {
	switch platform {
	case "facebook":
		params := url.Values{}
		params.Add("client_id", s.cfg.MetaAppID)
		params.Add("redirect_uri", s.cfg.FacebookRedirectURI)
		params.Add("scope", facebookScopes)
		params.Add("response_type", "code")

		return fmt.Sprintf("%s?%s", metaDialogURL, params.Encode()), nil

	case "instagram":
		params := url.Values{}
		params.Add("client_id", s.cfg.MetaAppID)
		params.Add("redirect_uri", s.cfg.InstagramRedirectURI)
		params.Add("scope", instagramScopes)
		params.Add("response_type", "code")

		return fmt.Sprintf("%s?%s", metaDialogURL, params.Encode()), nil

	case "linkedin":
		state, err := utils.GenerateRandomKey(16)
		if err != nil {
			slog.Info(err.Error())
			return "", err
		}
		if err := s.states.Set(ctx, userID, state); err != nil {
			return "", err
		}

		params := url.Values{}
		params.Add("response_type", "code")
		params.Add("client_id", s.cfg.LinkedinClientID)
		params.Add("redirect_uri", s.cfg.LinkedinRedirectURI)
		params.Add("scope", linkedinScopes)
		params.Add("state", state)

		return fmt.Sprintf("%s?%s", linkedin.Endpoint.AuthURL, params.Encode()), nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", platform)
	}
}

func (s *platformService) List(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	accounts, err := s.sa.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting social accounts")
	}

	return accounts, nil
}

// Delete disconnects one platform for the user. Only the matching
// (provider, kind) row is removed; other connections stay untouched.
func (s *platformService) Delete(ctx context.Context, userID int64, platform string) error {
	if userID == 0 {
		err := errors.New("UserID is not valid")
		slog.Info(err.Error())
		return err
	}

	provider, kind, err := platformKey(platform)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	account, err := s.sa.GetByKind(ctx, userID, provider, kind)
	if err != nil {
		return err
	}
	if account == nil {
		err = errors.New("Social account doesn't exist")
		slog.Info(err.Error())
		return err
	}

	err = s.sa.RemoveByKind(ctx, userID, provider, kind)
	if err != nil {
		return fmt.Errorf("Error removing account Info")
	}

	return nil
}

// platformKey maps a user-facing platform name to the stored
// (provider, kind) pair. Facebook and Instagram share provider "meta".
func platformKey(platform string) (provider, kind string, err error) {
	switch platform {
	case "facebook":
		return models.ProviderMeta, models.KindFacebook, nil
	case "instagram":
		return models.ProviderMeta, models.KindInstagram, nil
	case "linkedin":
		return models.ProviderLinkedin, models.KindLinkedin, nil
	default:
		return "", "", fmt.Errorf("unsupported platform: %s", platform)
	}
}
