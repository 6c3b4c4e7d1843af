package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/auth"
	"github.com/mitjakurath/klar/internal/domain"
)

// UserStore defines the user directory interface consumed by AuthService.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpsertByEmail(ctx context.Context, user domain.User) (*domain.User, error)
}

// SettingsEnsurer creates a user's default settings row if it is missing.
type SettingsEnsurer interface {
	EnsureDefaults(ctx context.Context, userID uuid.UUID) error
}

// TokenIssuer mints and verifies bearer credentials.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
	Verify(tokenString string) (uuid.UUID, error)
}

// AuthService completes the federation handshake and serves the identity
// endpoints. It holds no per-request state; every login runs the same
// chain: profile, resolve-or-create, default settings, token, redirect.
type AuthService struct {
	providers    map[domain.AuthProvider]auth.Provider
	users        UserStore
	settings     SettingsEnsurer
	tokens       TokenIssuer
	redirectBase string
}

// NewAuthService creates a new AuthService.
func NewAuthService(providers []auth.Provider, users UserStore, settings SettingsEnsurer, tokens TokenIssuer, redirectBase string) *AuthService {
	byName := make(map[domain.AuthProvider]auth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &AuthService{
		providers:    byName,
		users:        users,
		settings:     settings,
		tokens:       tokens,
		redirectBase: redirectBase,
	}
}

// AuthCodeURL returns the consent-page URL for the named provider.
func (s *AuthService) AuthCodeURL(provider, state string) (string, error) {
	p, ok := s.providers[domain.AuthProvider(provider)]
	if !ok {
		return "", fmt.Errorf("%w: unknown provider %q", domain.ErrNotFound, provider)
	}
	return p.AuthCodeURL(state), nil
}

// LoginResult is the outcome of a completed handshake.
type LoginResult struct {
	User        *domain.User
	Token       string
	RedirectURL string
}

// CompleteLogin converts a provider callback into a local credential. The
// user is resolved by email in a single atomic upsert, so concurrent first
// logins for the same address collapse into one record, and a login
// through a second provider returns the record created by the first one
// with its identity fields untouched.
func (s *AuthService) CompleteLogin(ctx context.Context, provider, code string) (*LoginResult, error) {
	p, ok := s.providers[domain.AuthProvider(provider)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider %q", domain.ErrNotFound, provider)
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange with %s: %v", domain.ErrUnavailable, provider, err)
	}

	// Without an email there is nothing to key the identity on; abort
	// before any record is written.
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: provider %s returned no email", domain.ErrInvalidInput, provider)
	}

	user, err := s.users.UpsertByEmail(ctx, domain.User{
		ID:          uuid.New(),
		Email:       profile.Email,
		DisplayName: profile.Name,
		AvatarURL:   optional(profile.AvatarURL),
		Provider:    profile.Provider,
		ProviderID:  profile.SubjectID,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	// Not atomic with the user write. A failure here aborts the handshake
	// and heals on the next login or settings read.
	if err := s.settings.EnsureDefaults(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("ensure settings for user %s: %w", user.ID, err)
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	redirect, err := s.buildRedirectURL(tok)
	if err != nil {
		return nil, err
	}

	slog.Info("login completed",
		"user_id", user.ID,
		"provider", provider,
	)

	return &LoginResult{User: user, Token: tok, RedirectURL: redirect}, nil
}

// CurrentUser loads the profile behind a verified user id and reissues a
// fresh credential alongside it.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*domain.User, string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, tok, nil
}

// ReissueToken mints a fresh credential for a verified user id, rejecting
// subjects that no longer exist in the directory.
func (s *AuthService) ReissueToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return "", err
	}

	tok, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}

// VerifyToken validates a bearer credential and returns its subject.
func (s *AuthService) VerifyToken(tokenString string) (uuid.UUID, error) {
	return s.tokens.Verify(tokenString)
}

func (s *AuthService) buildRedirectURL(tok string) (string, error) {
	u, err := url.Parse(s.redirectBase)
	if err != nil {
		return "", fmt.Errorf("parse redirect base: %w", err)
	}
	q := u.Query()
	q.Set("success", "true")
	q.Set("token", tok)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
