// Package google implements the identity provider port on top of Google's
// OAuth 2.0 / OpenID Connect endpoints.
package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/filmlab/photofx/internal/core/domain"
)

const (
	DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	maxUserInfoBytes   = 1 << 20
)

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// Endpoint and UserInfoURL default to Google's production endpoints.
	Endpoint    *oauth2.Endpoint
	UserInfoURL string
	Timeout     time.Duration
}

// Provider exchanges authorization codes for verified Google identities.
type Provider struct {
	oauth       *oauth2.Config
	userInfoURL string
	timeout     time.Duration
}

func NewProvider(cfg Config) *Provider {
	endpoint := googleoauth.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	userInfo := cfg.UserInfoURL
	if userInfo == "" {
		userInfo = DefaultUserInfoURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Provider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     endpoint,
			Scopes:       []string{"openid", "profile", "email"},
		},
		userInfoURL: userInfo,
		timeout:     timeout,
	}
}

// AuthCodeURL builds the consent URL. The account chooser is always shown.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
}

// Exchange redeems code and fetches the signed-in user's profile.
func (p *Provider) Exchange(ctx context.Context, code string) (*domain.ExternalIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google: exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google: build userinfo request: %w", err)
	}

	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUserInfoBytes))
	if err != nil {
		return nil, fmt.Errorf("google: read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", domain.ErrInvalidIdentity, resp.StatusCode)
	}

	return parseUserInfo(body)
}

func parseUserInfo(body []byte) (*domain.ExternalIdentity, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: malformed userinfo", domain.ErrInvalidIdentity)
	}
	info := gjson.ParseBytes(body)

	if v := info.Get("email_verified"); v.Exists() && !v.Bool() {
		return nil, fmt.Errorf("%w: email not verified", domain.ErrInvalidIdentity)
	}

	id := &domain.ExternalIdentity{
		Subject: strings.TrimSpace(info.Get("sub").String()),
		Email:   strings.TrimSpace(info.Get("email").String()),
		Name:    strings.TrimSpace(info.Get("name").String()),
	}
	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("%w: userinfo missing sub or email", domain.ErrInvalidIdentity)
	}
	return id, nil
}
