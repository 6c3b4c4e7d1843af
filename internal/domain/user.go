package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider represents an OAuth provider.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderGitHub AuthProvider = "github"
)

// User represents an authenticated user. Email is the reconciliation key
// across providers: the provider/provider_id pair is written on first login
// and never overwritten by logins through a different provider.
type User struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Email       string       `json:"email" db:"email"`
	DisplayName string       `json:"name" db:"display_name"`
	AvatarURL   *string      `json:"avatarUrl,omitempty" db:"avatar_url"`
	Provider    AuthProvider `json:"provider" db:"provider"`
	ProviderID  string       `json:"providerId" db:"provider_id"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}
