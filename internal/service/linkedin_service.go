package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/models"
	"github.com/crosspost-labs/crosspost/internal/repository"
	"github.com/crosspost-labs/crosspost/internal/transfer"
	"github.com/crosspost-labs/crosspost/pkg/utils"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

const (
	linkedinAPIURL = "https://api.linkedin.com"
	linkedinScopes = "openid profile email w_member_social"

	// LinkedIn caps the media description at 200 characters; longer
	// captions are truncated on rune boundaries.
	linkedinDescriptionLimit = 200
)

type LinkedinService interface {
	Callback(ctx context.Context, code, state string, userID int64) error
	Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error)
}

type linkedinService struct {
	cfg      config.Config
	sa       repository.SocialAccountRepository
	states   StateStore
	client   *http.Client
	endpoint oauth2.Endpoint
	apiURL   string
}

func NewLinkedinService(cfg config.Config, sa repository.SocialAccountRepository, states StateStore) LinkedinService {
	return &linkedinService{
		cfg:      cfg,
		sa:       sa,
		states:   states,
		client:   newHTTPClient(),
		endpoint: linkedin.Endpoint,
		apiURL:   linkedinAPIURL,
	}
}

// Callback validates the CSRF state, exchanges the code and stores the
// normalized identity. A state mismatch aborts before any account write.
func (s *linkedinService) Callback(ctx context.Context, code, state string, userID int64) error {
	if code == "" {
		slog.Info(ErrMissingAuthorizationCode.Error())
		return ErrMissingAuthorizationCode
	}

	stored, err := s.states.Consume(ctx, userID)
	if err != nil {
		return err
	}
	if stored == "" || stored != state {
		slog.Info("linkedin oauth state mismatch", "user_id", userID)
		return ErrStateMismatch
	}

	conf := &oauth2.Config{
		ClientID:     s.cfg.LinkedinClientID,
		ClientSecret: s.cfg.LinkedinClientSecret,
		RedirectURL:  s.cfg.LinkedinRedirectURI,
		Scopes:       strings.Split(linkedinScopes, " "),
		Endpoint:     s.endpoint,
	}

	tok, err := conf.Exchange(context.WithValue(ctx, oauth2.HTTPClient, s.client), code)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}

	userInfo, err := s.fetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return err
	}

	accountID := userInfo.Sub
	if accountID == "" {
		accountID = fmt.Sprintf("li_unknown_%d", userID)
	}
	name := userInfo.Name
	if name == "" {
		name = "LinkedIn User"
	}

	extra := map[string]any{
		"kind":        models.KindLinkedin,
		"name":        name,
		"profile_url": "https://www.linkedin.com/in/" + accountID,
		"email":       userInfo.Email,
		"picture":     userInfo.Picture,
	}
	if !tok.Expiry.IsZero() {
		extra["expires_in"] = int64(time.Until(tok.Expiry).Seconds())
	}
	if tok.RefreshToken != "" {
		extra["refresh_token"] = tok.RefreshToken
	}

	encryptedToken, err := utils.Encrypt([]byte(tok.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	_, err = s.sa.Upsert(ctx, &models.SocialAccount{
		UserID:      userID,
		Provider:    models.ProviderLinkedin,
		Kind:        models.KindLinkedin,
		AccountID:   accountID,
		AccountName: name,
		AccessToken: encryptedToken,
		Extra:       extra,
	})
	return err
}

func (s *linkedinService) fetchUserInfo(ctx context.Context, accessToken string) (*transfer.LinkedinUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/v2/userinfo", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	var userInfo transfer.LinkedinUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	return &userInfo, nil
}

// Publish creates a UGC share. Text posts take one call; image posts first
// register an upload, PUT the image bytes, then share the asset URN. The
// permalink is derived from the returned share URN without another call.
func (s *linkedinService) Publish(ctx context.Context, userID int64, message, imageURL string) (*transfer.PublishResult, error) {
	account, err := s.sa.GetByKind(ctx, userID, models.ProviderLinkedin, models.KindLinkedin)
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

	author := "urn:li:person:" + account.AccountID

	share := transfer.UGCShareRequest{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: transfer.UGCSpecificContent{
			ShareContent: transfer.UGCShareContent{
				ShareCommentary:    transfer.UGCText{Text: message},
				ShareMediaCategory: "NONE",
			},
		},
		Visibility: transfer.UGCVisibility{MemberNetworkVisibility: "PUBLIC"},
	}

	if imageURL != "" {
		assetURN, err := s.uploadImage(ctx, accessToken, author, imageURL)
		if err != nil {
			return nil, err
		}

		description := message
		if utf8.RuneCountInString(description) > linkedinDescriptionLimit {
			description = string([]rune(description)[:linkedinDescriptionLimit])
		}

		share.SpecificContent.ShareContent.ShareMediaCategory = "IMAGE"
		share.SpecificContent.ShareContent.Media = []transfer.UGCMedia{{
			Status:      "READY",
			Description: transfer.UGCText{Text: description},
			Media:       assetURN,
			Title:       transfer.UGCText{Text: "Image"},
		}}
	}

	var resp transfer.UGCShareResponse
	if err := s.postJSON(ctx, accessToken, s.apiURL+"/v2/ugcPosts", share, &resp); err != nil {
		return nil, err
	}
	if resp.ServiceErrorCode != nil {
		msg := resp.Message
		if msg == "" {
			msg = "unknown linkedin error"
		}
		return nil, &PublishError{Provider: "linkedin", Message: msg}
	}

	return &transfer.PublishResult{
		PostID:    resp.ID,
		Permalink: sharePermalink(resp.ID),
	}, nil
}

// uploadImage registers an upload slot, fetches the image bytes and PUTs
// them to the returned URL. Returns the asset URN to reference in the share.
func (s *linkedinService) uploadImage(ctx context.Context, accessToken, author, imageURL string) (string, error) {
	register := transfer.RegisterUploadRequest{
		RegisterUploadRequest: transfer.RegisterUploadBody{
			Owner:   author,
			Recipes: []string{"urn:li:digitalmediaRecipe:feedshare-image"},
			ServiceRelationships: []transfer.RegisterUploadServiceRelationship{{
				Identifier:       "urn:li:userGeneratedContent",
				RelationshipType: "OWNER",
			}},
		},
	}

	var registered transfer.RegisterUploadResponse
	if err := s.postJSON(ctx, accessToken, s.apiURL+"/v2/assets?action=registerUpload", register, &registered); err != nil {
		return "", err
	}
	if registered.Value == nil {
		return "", &PublishError{Provider: "linkedin", Message: "failed to register upload"}
	}

	uploadURL := registered.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	assetURN := registered.Value.Asset

	imageBytes, err := s.fetchImage(ctx, imageURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(imageBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrImageUploadFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	default:
		body, _ := io.ReadAll(resp.Body)
		slog.Info("linkedin image upload rejected", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", ErrImageUploadFailed, resp.StatusCode)
	}

	return assetURN, nil
}

func (s *linkedinService) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (s *linkedinService) postJSON(ctx context.Context, accessToken, rawURL string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode linkedin response: %w", err)
	}
	return nil
}

// sharePermalink turns "urn:li:share:<id>" into a public feed URL.
// No network call needed.
func sharePermalink(shareURN string) string {
	if !strings.HasPrefix(shareURN, "urn:li:share:") {
		return ""
	}
	return "https://www.linkedin.com/feed/update/" + shareURN
}
