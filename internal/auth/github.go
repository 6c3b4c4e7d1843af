package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/mitjakurath/klar/internal/domain"
)

const (
	defaultGitHubUserURL   = "https://api.github.com/user"
	defaultGitHubEmailsURL = "https://api.github.com/user/emails"
)

// GitHubConfig configures the GitHub provider. Endpoint and API URLs are
// overridable for tests.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	Endpoint  oauth2.Endpoint
	UserURL   string
	EmailsURL string
}

// GitHub implements Provider using GitHub OAuth.
type GitHub struct {
	oauth     *oauth2.Config
	userURL   string
	emailsURL string
}

// NewGitHub creates a GitHub provider.
func NewGitHub(cfg GitHubConfig) *GitHub {
	endpoint := cfg.Endpoint
	if endpoint.TokenURL == "" {
		endpoint = githuboauth.Endpoint
	}
	userURL := cfg.UserURL
	if userURL == "" {
		userURL = defaultGitHubUserURL
	}
	emailsURL := cfg.EmailsURL
	if emailsURL == "" {
		emailsURL = defaultGitHubEmailsURL
	}

	return &GitHub{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{"user:email"},
			RedirectURL:  cfg.RedirectURL,
		},
		userURL:   userURL,
		emailsURL: emailsURL,
	}
}

// Name identifies the provider.
func (g *GitHub) Name() domain.AuthProvider {
	return domain.AuthProviderGitHub
}

// AuthCodeURL builds the GitHub consent-page URL.
func (g *GitHub) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state)
}

// Exchange trades the authorization code for the GitHub profile. GitHub
// omits the email from /user when it is private, so a second call to the
// emails endpoint picks the primary address.
func (g *GitHub) Exchange(ctx context.Context, code string) (*Profile, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange: %w", err)
	}

	info, err := g.fetchUser(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("fetch github user info: %w", err)
	}

	if info.Email == "" {
		email, err := g.fetchPrimaryEmail(ctx, tok.AccessToken)
		if err != nil {
			return nil, fmt.Errorf("fetch github primary email: %w", err)
		}
		info.Email = email
	}

	name := info.Name
	if name == "" {
		name = info.Login
	}

	return &Profile{
		Provider:  domain.AuthProviderGitHub,
		SubjectID: fmt.Sprintf("%d", info.ID),
		Email:     info.Email,
		Name:      name,
		AvatarURL: info.AvatarURL,
	}, nil
}

type githubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (g *GitHub) fetchUser(ctx context.Context, accessToken string) (*githubUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user info returned status %d", resp.StatusCode)
	}

	var info githubUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &info, nil
}

type githubEmail struct {
	Email   string `json:"email"`
	Primary bool   `json:"primary"`
}

func (g *GitHub) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.emailsURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch emails: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github emails returned status %d", resp.StatusCode)
	}

	var emails []githubEmail
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("decode emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	if len(emails) > 0 {
		return emails[0].Email, nil
	}
	return "", fmt.Errorf("no email on github account")
}
