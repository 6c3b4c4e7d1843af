package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mitjakurath/klar/internal/domain"
)

// SettingsRepository handles user settings data access.
type SettingsRepository struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

const settingsColumns = `id, user_id, work_duration, short_break_duration, long_break_duration,
	sessions_until_long_break, auto_start_breaks, auto_start_pomodoros,
	notifications_enabled, sound_enabled, theme`

// FindByUser retrieves a user's settings.
func (r *SettingsRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.Settings, error) {
	var settings domain.Settings
	err := r.db.GetContext(ctx, &settings,
		`SELECT `+settingsColumns+` FROM user_settings WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find settings for user %s: %w", userID, err)
	}
	return &settings, nil
}

// EnsureDefaults inserts the default settings row for a user if none
// exists. Safe to call any number of times; an existing row is left
// untouched.
func (r *SettingsRepository) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	defaults := domain.DefaultSettings(userID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_settings (id, user_id, work_duration, short_break_duration, long_break_duration,
		                            sessions_until_long_break, auto_start_breaks, auto_start_pomodoros,
		                            notifications_enabled, sound_enabled, theme)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (user_id) DO NOTHING`,
		defaults.ID, defaults.UserID, defaults.WorkDuration, defaults.ShortBreakDuration,
		defaults.LongBreakDuration, defaults.SessionsUntilLongBreak, defaults.AutoStartBreaks,
		defaults.AutoStartPomodoros, defaults.NotificationsEnabled, defaults.SoundEnabled, defaults.Theme,
	)
	if err != nil {
		return fmt.Errorf("ensure default settings: %w", err)
	}
	return nil
}

// Update rewrites a user's settings.
func (r *SettingsRepository) Update(ctx context.Context, settings domain.Settings) (*domain.Settings, error) {
	var result domain.Settings
	err := r.db.QueryRowxContext(ctx,
		`UPDATE user_settings
		 SET work_duration = $2, short_break_duration = $3, long_break_duration = $4,
		     sessions_until_long_break = $5, auto_start_breaks = $6, auto_start_pomodoros = $7,
		     notifications_enabled = $8, sound_enabled = $9, theme = $10
		 WHERE user_id = $1
		 RETURNING `+settingsColumns,
		settings.UserID, settings.WorkDuration, settings.ShortBreakDuration, settings.LongBreakDuration,
		settings.SessionsUntilLongBreak, settings.AutoStartBreaks, settings.AutoStartPomodoros,
		settings.NotificationsEnabled, settings.SoundEnabled, settings.Theme,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update settings for user %s: %w", settings.UserID, err)
	}
	return &result, nil
}
