// Package auth integrates third-party identity providers. Each provider
// turns an OAuth authorization code into a Profile; everything after that
// (user resolution, token issuance) is the auth service's job.
package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/mitjakurath/klar/internal/domain"
)

// Profile is what a provider asserts about the user who just logged in.
// Email is the only field the rest of the system requires.
type Profile struct {
	Provider  domain.AuthProvider
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// Provider completes one leg of the federation handshake.
type Provider interface {
	// Name identifies the provider in routes and user records.
	Name() domain.AuthProvider
	// AuthCodeURL builds the consent-page URL for the given CSRF state.
	AuthCodeURL(state string) string
	// Exchange trades the authorization code for the provider's profile.
	Exchange(ctx context.Context, code string) (*Profile, error)
}

// httpClient bounds every outbound provider call so an identity-provider
// outage surfaces as an error instead of a hang.
var httpClient = &http.Client{Timeout: 10 * time.Second}
