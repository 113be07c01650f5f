package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githubOAuth "golang.org/x/oauth2/github"
	googleOAuth "golang.org/x/oauth2/google"
	linkedinOAuth "golang.org/x/oauth2/linkedin"

	"github.com/eventlens/api/internal/domain"
)

// Profile is the normalized identity assertion returned by a provider after
// the authorization handshake.
type Profile struct {
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}

// ProviderCredentials holds one provider's OAuth client registration.
type ProviderCredentials struct {
	ClientID     string
	ClientSecret string
}

// OAuthProviders drives the authorization-code exchange and userinfo fetch
// for every configured provider.
type OAuthProviders struct {
	configs map[domain.Provider]*oauth2.Config
	client  *http.Client
}

// NewOAuthProviders builds the per-provider oauth2 configs. serverURL is the
// externally visible base URL callbacks are registered under.
func NewOAuthProviders(serverURL string, creds map[domain.Provider]ProviderCredentials) *OAuthProviders {
	endpoints := map[domain.Provider]oauth2.Endpoint{
		domain.ProviderGoogle:   googleOAuth.Endpoint,
		domain.ProviderGitHub:   githubOAuth.Endpoint,
		domain.ProviderLinkedIn: linkedinOAuth.Endpoint,
	}
	scopes := map[domain.Provider][]string{
		domain.ProviderGoogle:   {"openid", "profile", "email"},
		domain.ProviderGitHub:   {"user:email"},
		domain.ProviderLinkedIn: {"openid", "profile", "email"},
	}

	configs := make(map[domain.Provider]*oauth2.Config, len(creds))
	for provider, c := range creds {
		configs[provider] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     endpoints[provider],
			Scopes:       scopes[provider],
			RedirectURL:  fmt.Sprintf("%s/api/auth/%s/callback", serverURL, provider),
		}
	}

	return &OAuthProviders{
		configs: configs,
		client:  http.DefaultClient,
	}
}

// AuthCodeURL returns the provider's authorization URL for the redirect step.
func (p *OAuthProviders) AuthCodeURL(provider domain.Provider, state string) (string, error) {
	cfg, ok := p.configs[provider]
	if !ok {
		return "", fmt.Errorf("%w: provider %q not configured", domain.ErrInvalidInput, provider)
	}
	return cfg.AuthCodeURL(state), nil
}

// FetchProfile exchanges the authorization code and fetches the provider's
// profile assertion.
func (p *OAuthProviders) FetchProfile(ctx context.Context, provider domain.Provider, code string) (*Profile, error) {
	cfg, ok := p.configs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q not configured", domain.ErrInvalidInput, provider)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%s token exchange: %w", provider, err)
	}

	switch provider {
	case domain.ProviderGoogle:
		return p.fetchGoogleProfile(ctx, token.AccessToken)
	case domain.ProviderGitHub:
		return p.fetchGitHubProfile(ctx, token.AccessToken)
	case domain.ProviderLinkedIn:
		return p.fetchLinkedInProfile(ctx, token.AccessToken)
	}
	return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, provider)
}

type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *OAuthProviders) fetchGoogleProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var info googleUserInfo
	if err := p.getJSON(ctx, "https://www.googleapis.com/oauth2/v2/userinfo", accessToken, nil, &info); err != nil {
		return nil, fmt.Errorf("fetch google user info: %w", err)
	}
	return &Profile{
		Subject:   info.ID,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

type githubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (p *OAuthProviders) fetchGitHubProfile(ctx context.Context, accessToken string) (*Profile, error) {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}

	var info githubUserInfo
	if err := p.getJSON(ctx, "https://api.github.com/user", accessToken, headers, &info); err != nil {
		return nil, fmt.Errorf("fetch github user info: %w", err)
	}

	// The /user endpoint omits the email unless it is public.
	if info.Email == "" {
		var emails []struct {
			Email   string `json:"email"`
			Primary bool   `json:"primary"`
		}
		if err := p.getJSON(ctx, "https://api.github.com/user/emails", accessToken, headers, &emails); err != nil {
			return nil, fmt.Errorf("fetch github emails: %w", err)
		}
		for _, e := range emails {
			if e.Primary {
				info.Email = e.Email
				break
			}
		}
		if info.Email == "" && len(emails) > 0 {
			info.Email = emails[0].Email
		}
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &Profile{
		Subject:   fmt.Sprintf("%d", info.ID),
		Email:     info.Email,
		Name:      name,
		AvatarURL: info.AvatarURL,
	}, nil
}

type linkedinUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (p *OAuthProviders) fetchLinkedInProfile(ctx context.Context, accessToken string) (*Profile, error) {
	var info linkedinUserInfo
	if err := p.getJSON(ctx, "https://api.linkedin.com/v2/userinfo", accessToken, nil, &info); err != nil {
		return nil, fmt.Errorf("fetch linkedin user info: %w", err)
	}
	return &Profile{
		Subject:   info.Sub,
		Email:     info.Email,
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

func (p *OAuthProviders) getJSON(ctx context.Context, url, accessToken string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
