package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/domain"
)

// SettingsStore defines the settings data access interface consumed by
// SettingsService.
type SettingsStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Settings, error)
	EnsureDefaults(ctx context.Context, userID uuid.UUID) error
	Update(ctx context.Context, settings domain.Settings) (*domain.Settings, error)
}

// SettingsService handles user settings business logic.
type SettingsService struct {
	settings SettingsStore
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settings SettingsStore) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the user's settings, creating the default row first if the
// signup-time write was lost.
func (s *SettingsService) Get(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	if err := s.settings.EnsureDefaults(ctx, userID); err != nil {
		return nil, err
	}
	return s.settings.FindByUser(ctx, userID)
}

// Update rewrites the user's settings. The row is healed first so an
// update never fails just because signup skipped the defaults.
func (s *SettingsService) Update(ctx context.Context, settings domain.Settings) (*domain.Settings, error) {
	if err := s.settings.EnsureDefaults(ctx, settings.UserID); err != nil {
		return nil, err
	}
	return s.settings.Update(ctx, settings)
}
