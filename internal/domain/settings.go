package domain

import "github.com/google/uuid"

// Settings holds a user's timer and UI preferences. Exactly one row exists
// per user; defaults are created on first login and healed lazily if that
// write was lost.
type Settings struct {
	ID                     uuid.UUID `json:"id" db:"id"`
	UserID                 uuid.UUID `json:"userId" db:"user_id"`
	WorkDuration           int       `json:"workDuration" db:"work_duration"`
	ShortBreakDuration     int       `json:"shortBreakDuration" db:"short_break_duration"`
	LongBreakDuration      int       `json:"longBreakDuration" db:"long_break_duration"`
	SessionsUntilLongBreak int       `json:"sessionsUntilLongBreak" db:"sessions_until_long_break"`
	AutoStartBreaks        bool      `json:"autoStartBreaks" db:"auto_start_breaks"`
	AutoStartPomodoros     bool      `json:"autoStartPomodoros" db:"auto_start_pomodoros"`
	NotificationsEnabled   bool      `json:"notificationsEnabled" db:"notifications_enabled"`
	SoundEnabled           bool      `json:"soundEnabled" db:"sound_enabled"`
	Theme                  string    `json:"theme" db:"theme"`
}

// DefaultSettings returns the settings every new user starts with.
func DefaultSettings(userID uuid.UUID) Settings {
	return Settings{
		ID:                     uuid.New(),
		UserID:                 userID,
		WorkDuration:           25,
		ShortBreakDuration:     5,
		LongBreakDuration:      15,
		SessionsUntilLongBreak: 4,
		AutoStartBreaks:        false,
		AutoStartPomodoros:     false,
		NotificationsEnabled:   true,
		SoundEnabled:           true,
		Theme:                  "light",
	}
}
