package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	config "github.com/crosspost-labs/crosspost/configs"
	"github.com/crosspost-labs/crosspost/internal/transfer"
	"golang.org/x/oauth2"
)

// Facebook and Instagram share one Meta app and one Graph API; only the
// redirect URI, scopes and the stored account kind differ.
const (
	metaDialogURL = "https://www.facebook.com/v17.0/dialog/oauth"
	metaGraphURL  = "https://graph.facebook.com/v17.0"

	facebookScopes  = "pages_manage_posts,pages_read_engagement,pages_show_list"
	instagramScopes = "instagram_basic,instagram_content_publish,pages_show_list"
)

func metaOAuthConfig(cfg config.Config, redirectURI, dialogURL, graphURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.MetaAppID,
		ClientSecret: cfg.MetaAppSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   dialogURL,
			TokenURL:  graphURL + "/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// exchangeMetaToken swaps the authorization code for a short-lived user
// token, then upgrades it to a long-lived one. An upgrade response without a
// token falls back to the short-lived token instead of failing the flow.
func exchangeMetaToken(ctx context.Context, client *http.Client, cfg config.Config, redirectURI, dialogURL, graphURL, code string) (string, error) {
	conf := metaOAuthConfig(cfg, redirectURI, dialogURL, graphURL)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("%w: %v", ErrTokenExchangeFailed, err)
	}

	longLived, err := upgradeMetaToken(ctx, client, cfg, graphURL, tok.AccessToken)
	if err != nil || longLived == "" {
		if err != nil {
			slog.Info("long-lived token upgrade failed, keeping short-lived token", "error", err)
		}
		return tok.AccessToken, nil
	}

	return longLived, nil
}

func upgradeMetaToken(ctx context.Context, client *http.Client, cfg config.Config, graphURL, shortToken string) (string, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", cfg.MetaAppID)
	params.Set("client_secret", cfg.MetaAppSecret)
	params.Set("fb_exchange_token", shortToken)

	var resp transfer.MetaTokenResponse
	if err := graphGet(ctx, client, graphURL+"/oauth/access_token", params, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("long-lived token exchange: %s", resp.Error.Message)
	}

	return resp.AccessToken, nil
}

func fetchMetaPages(ctx context.Context, client *http.Client, graphURL, accessToken, fields string) (*transfer.MetaPages, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", fields)

	var pages transfer.MetaPages
	if err := graphGet(ctx, client, graphURL+"/me/accounts", params, &pages); err != nil {
		return nil, err
	}
	return &pages, nil
}

func graphGet(ctx context.Context, client *http.Client, rawURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}

func graphPostForm(ctx context.Context, client *http.Client, rawURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to decode graph response: %w", err)
	}
	return nil
}
