package handler

import (
	"net/http"

	"github.com/mitjakurath/klar/internal/domain"
	"github.com/mitjakurath/klar/internal/service"
)

// SettingsHandler handles user settings endpoints.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get returns the caller's settings, creating defaults if missing.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	settings, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

type settingsRequest struct {
	WorkDuration           int    `json:"workDuration" validate:"required,gt=0"`
	ShortBreakDuration     int    `json:"shortBreakDuration" validate:"required,gt=0"`
	LongBreakDuration      int    `json:"longBreakDuration" validate:"required,gt=0"`
	SessionsUntilLongBreak int    `json:"sessionsUntilLongBreak" validate:"required,gt=0"`
	AutoStartBreaks        bool   `json:"autoStartBreaks"`
	AutoStartPomodoros     bool   `json:"autoStartPomodoros"`
	NotificationsEnabled   bool   `json:"notificationsEnabled"`
	SoundEnabled           bool   `json:"soundEnabled"`
	Theme                  string `json:"theme" validate:"required,oneof=light dark"`
}

// Update rewrites the caller's settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var req settingsRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	settings, err := h.settings.Update(r.Context(), domain.Settings{
		UserID:                 userID,
		WorkDuration:           req.WorkDuration,
		ShortBreakDuration:     req.ShortBreakDuration,
		LongBreakDuration:      req.LongBreakDuration,
		SessionsUntilLongBreak: req.SessionsUntilLongBreak,
		AutoStartBreaks:        req.AutoStartBreaks,
		AutoStartPomodoros:     req.AutoStartPomodoros,
		NotificationsEnabled:   req.NotificationsEnabled,
		SoundEnabled:           req.SoundEnabled,
		Theme:                  req.Theme,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}
