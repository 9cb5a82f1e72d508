package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/you/authgate/domain"
)

// ProviderParams holds the per-provider OAuth client settings supplied by
// configuration.
type ProviderParams struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	RedirectURL  string
}

type providerMeta struct {
	config      *oauth2.Config
	userInfoURL string
}

// SocialGatewayImpl implements domain.SocialGateway over a closed registry of
// provider metadata. Unknown providers are rejected at parse time, so lookups
// here only fail when a known provider was not configured.
type SocialGatewayImpl struct {
	providers map[domain.SocialProvider]providerMeta
	client    *http.Client
}

// NewSocialGateway builds the provider registry from configured params.
// Providers with an empty client id are left unregistered.
func NewSocialGateway(params map[domain.SocialProvider]ProviderParams) domain.SocialGateway {
	g := &SocialGatewayImpl{
		providers: make(map[domain.SocialProvider]providerMeta),
		client:    &http.Client{Timeout: 10 * time.Second},
	}

	if p, ok := params[domain.SocialGoogle]; ok && p.ClientID != "" {
		g.providers[domain.SocialGoogle] = providerMeta{
			config: &oauth2.Config{
				ClientID:     p.ClientID,
				ClientSecret: p.ClientSecret,
				Scopes:       p.Scopes,
				RedirectURL:  p.RedirectURL,
				Endpoint:     google.Endpoint,
			},
			userInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
		}
	}

	return g
}

// AuthCodeURL implements domain.SocialGateway
func (g *SocialGatewayImpl) AuthCodeURL(provider domain.SocialProvider, state string) (string, error) {
	meta, ok := g.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %s is not configured", domain.ErrUnknownProvider, provider)
	}
	return meta.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// FetchProfile implements domain.SocialGateway: exchanges the callback code
// and resolves the provider-verified identity.
func (g *SocialGatewayImpl) FetchProfile(ctx context.Context, provider domain.SocialProvider, code string) (*domain.SocialProfile, error) {
	meta, ok := g.providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not configured", domain.ErrUnknownProvider, provider)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)
	token, err := meta.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request returned status %d", resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	return &domain.SocialProfile{
		AccountID:     info.Sub,
		Email:         info.Email,
		Name:          info.Name,
		Image:         info.Picture,
		EmailVerified: info.EmailVerified,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		Scope:         strings.Join(meta.config.Scopes, " "),
	}, nil
}
