package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/models"
	"github.com/crosspost-labs/crosspost/internal/repository"
	"github.com/crosspost-labs/crosspost/internal/transfer"
	"github.com/crosspost-labs/crosspost/pkg/utils"
)

type FacebookService interface {
	Callback(ctx context.Context, code string, userID int64) error
	Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error)
}

type facebookService struct {
	cfg       config.Config
	sa        repository.SocialAccountRepository
	client    *http.Client
	dialogURL string
	graphURL  string
}

func NewFacebookService(cfg config.Config, sa repository.SocialAccountRepository) FacebookService {
	return &facebookService{
		cfg:       cfg,
		sa:        sa,
		client:    newHTTPClient(),
		dialogURL: metaDialogURL,
		graphURL:  metaGraphURL,
	}
}

func (s *facebookService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		slog.Info(ErrMissingAuthorizationCode.Error())
		return ErrMissingAuthorizationCode
	}

	token, err := exchangeMetaToken(ctx, s.client, s.cfg, s.cfg.FacebookRedirectURI, s.dialogURL, s.graphURL, code)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("fields", "id,name")
	params.Set("access_token", token)

	var user transfer.MetaUser
	if err := graphGet(ctx, s.client, s.graphURL+"/me", params, &user); err != nil {
		return err
	}
	if user.Error != nil {
		return fmt.Errorf("failed to fetch facebook identity: %s", user.Error.Message)
	}

	accountID := user.ID
	if accountID == "" {
		accountID = fmt.Sprintf("fb_unknown_%d", userID)
	}
	name := user.Name
	if name == "" {
		name = "Facebook User"
	}
	var profileURL string
	if user.ID != "" {
		profileURL = "https://www.facebook.com/" + user.ID
	}

	encryptedToken, err := utils.Encrypt([]byte(token), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	_, err = s.sa.Upsert(ctx, &models.SocialAccount{
		UserID:      userID,
		Provider:    models.ProviderMeta,
		Kind:        models.KindFacebook,
		AccountID:   accountID,
		AccountName: name,
		AccessToken: encryptedToken,
		Extra: map[string]any{
			"kind":        models.KindFacebook,
			"name":        name,
			"profile_url": profileURL,
		},
	})
	return err
}

// Publish posts to the first manageable Page of the connected account.
// Multi-page accounts always publish to the first page; there is no
// disambiguation step.
func (s *facebookService) Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error) {
	account, err := s.sa.GetByKind(ctx, userID, models.ProviderMeta, models.KindFacebook)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrNoAccountConnected
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	pages, err := fetchMetaPages(ctx, s.client, s.graphURL, accessToken, "id,name,access_token")
	if err != nil {
		return nil, err
	}
	if pages.Error != nil {
		return nil, &PublishError{Provider: "facebook", Message: pages.Error.Message}
	}
	if len(pages.Data) == 0 {
		return nil, ErrNoPagesFound
	}

	page := pages.Data[0]

	var resp transfer.MetaPostResponse
	var postID string
	if imageURL != "" {
		form := url.Values{}
		form.Set("url", imageURL)
		form.Set("caption", message)
		form.Set("access_token", page.AccessToken)
		if err := graphPostForm(ctx, s.client, s.graphURL+"/"+page.ID+"/photos", form, &resp); err != nil {
			return nil, err
		}
		postID = resp.PostID
	} else {
		form := url.Values{}
		form.Set("message", message)
		form.Set("access_token", page.AccessToken)
		if err := graphPostForm(ctx, s.client, s.graphURL+"/"+page.ID+"/feed", form, &resp); err != nil {
			return nil, err
		}
		postID = resp.ID
	}

	if resp.Error != nil {
		return nil, &PublishError{Provider: "facebook", Message: resp.Error.Message}
	}

	// Best-effort permalink lookup. Absence is not a failure.
	var permalink string
	if postID != "" {
		params := url.Values{}
		params.Set("access_token", page.AccessToken)
		params.Set("fields", "permalink_url")

		var details transfer.MetaPermalink
		if err := graphGet(ctx, s.client, s.graphURL+"/"+postID, params, &details); err == nil && details.Error == nil {
			permalink = details.PermalinkURL
		}
	}

	return &transfer.PublishResult{PostID: postID, Permalink: permalink}, nil
}
