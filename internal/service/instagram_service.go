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

type InstagramService interface {
	Callback(ctx context.Context, code string, userID int64) error
	Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error)
}

type instagramService struct {
	cfg       config.Config
	sa        repository.SocialAccountRepository
	client    *http.Client
	dialogURL string
	graphURL  string
}

func NewInstagramService(cfg config.Config, sa repository.SocialAccountRepository) InstagramService {
	return &instagramService{
		cfg:       cfg,
		sa:        sa,
		client:    newHTTPClient(),
		dialogURL: metaDialogURL,
		graphURL:  metaGraphURL,
	}
}

func (s *instagramService) Callback(ctx context.Context, code string, userID int64) error {
	if code == "" {
		slog.Info(ErrMissingAuthorizationCode.Error())
		return ErrMissingAuthorizationCode
	}

	token, err := exchangeMetaToken(ctx, s.client, s.cfg, s.cfg.InstagramRedirectURI, s.dialogURL, s.graphURL, code)
	if err != nil {
		return err
	}

	pages, err := fetchMetaPages(ctx, s.client, s.graphURL, token, "id,name,instagram_business_account")
	if err != nil {
		return err
	}
	if pages.Error != nil {
		return fmt.Errorf("failed to list pages: %s", pages.Error.Message)
	}

	// First page with a linked IG business account wins.
	var igID, pageName string
	for _, p := range pages.Data {
		if p.InstagramBusinessAccount != nil && p.InstagramBusinessAccount.ID != "" {
			igID = p.InstagramBusinessAccount.ID
			pageName = p.Name
			break
		}
	}

	var username string
	if igID != "" {
		params := url.Values{}
		params.Set("fields", "username")
		params.Set("access_token", token)

		var igUser transfer.MetaIGUser
		if err := graphGet(ctx, s.client, s.graphURL+"/"+igID, params, &igUser); err == nil && igUser.Error == nil {
			username = igUser.Username
		}
	}

	accountID := igID
	if accountID == "" {
		accountID = fmt.Sprintf("ig_unknown_%d", userID)
	}
	name := username
	if name == "" {
		name = pageName
	}
	if name == "" {
		name = "Instagram Account"
	}
	var profileURL string
	if username != "" {
		profileURL = fmt.Sprintf("https://www.instagram.com/%s/", username)
	}

	encryptedToken, err := utils.Encrypt([]byte(token), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	_, err = s.sa.Upsert(ctx, &models.SocialAccount{
		UserID:      userID,
		Provider:    models.ProviderMeta,
		Kind:        models.KindInstagram,
		AccountID:   accountID,
		AccountName: name,
		AccessToken: encryptedToken,
		Extra: map[string]any{
			"kind":        models.KindInstagram,
			"name":        name,
			"profile_url": profileURL,
		},
	})
	return err
}

// Publish creates a media container for the image and then publishes it.
// Instagram has no text-only posts, so an image URL is mandatory and its
// absence fails before any outbound call.
func (s *instagramService) Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error) {
	if imageURL == "" {
		return nil, ErrImageRequired
	}

	account, err := s.sa.GetByKind(ctx, userID, models.ProviderMeta, models.KindInstagram)
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

	pages, err := fetchMetaPages(ctx, s.client, s.graphURL, accessToken, "id,name,instagram_business_account,access_token")
	if err != nil {
		return nil, err
	}
	if pages.Error != nil {
		return nil, &PublishError{Provider: "instagram", Message: pages.Error.Message}
	}

	// Prefer the page whose linked IG business account matches the stored
	// account; fall back to the first page's token.
	var pageToken string
	for _, p := range pages.Data {
		if p.InstagramBusinessAccount != nil && p.InstagramBusinessAccount.ID == account.AccountID {
			pageToken = p.AccessToken
			break
		}
	}
	if pageToken == "" && len(pages.Data) > 0 {
		pageToken = pages.Data[0].AccessToken
	}
	if pageToken == "" {
		return nil, &PublishError{Provider: "instagram", Message: "no page token available for publishing"}
	}

	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", message)
	form.Set("access_token", pageToken)

	var created transfer.MetaPostResponse
	if err := graphPostForm(ctx, s.client, s.graphURL+"/"+account.AccountID+"/media", form, &created); err != nil {
		return nil, err
	}
	if created.Error != nil {
		return nil, &PublishError{Provider: "instagram", Message: created.Error.Message}
	}
	if created.ID == "" {
		return nil, ErrMediaCreationFailed
	}

	form = url.Values{}
	form.Set("creation_id", created.ID)
	form.Set("access_token", pageToken)

	var published transfer.MetaPostResponse
	if err := graphPostForm(ctx, s.client, s.graphURL+"/"+account.AccountID+"/media_publish", form, &published); err != nil {
		return nil, err
	}
	if published.Error != nil {
		return nil, &PublishError{Provider: "instagram", Message: published.Error.Message}
	}

	// Best-effort permalink lookup. Absence is not a failure.
	var permalink string
	if published.ID != "" {
		params := url.Values{}
		params.Set("access_token", pageToken)
		params.Set("fields", "permalink")

		var details transfer.MetaPermalink
		if err := graphGet(ctx, s.client, s.graphURL+"/"+published.ID, params, &details); err == nil && details.Error == nil {
			permalink = details.Permalink
		}
	}

	return &transfer.PublishResult{PostID: published.ID, Permalink: permalink}, nil
}
