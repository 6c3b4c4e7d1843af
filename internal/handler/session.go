package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/domain"
	"github.com/mitjakurath/klar/internal/service"
)

// SessionHandler handles focus session endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type startSessionRequest struct {
	Duration int                `json:"duration" validate:"required,gt=0"`
	Type     domain.SessionType `json:"type" validate:"required,oneof=work short_break long_break"`
	TaskID   *uuid.UUID         `json:"taskId"`
}

// Start records a new running session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var req startSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.sessions.Start(r.Context(), userID, req.Duration, req.Type, req.TaskID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

type updateSessionRequest struct {
	Duration  *int                `json:"duration" validate:"omitempty,gt=0"`
	Type      *domain.SessionType `json:"type" validate:"omitempty,oneof=work short_break long_break"`
	Completed *bool               `json:"completed"`
}

// Update rewrites a session the caller owns.
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	sessionID, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req updateSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.sessions.Update(r.Context(), userID, sessionID, service.SessionUpdate{
		Duration:  req.Duration,
		Type:      req.Type,
		Completed: req.Completed,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// Complete marks a session the caller owns as finished.
func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	sessionID, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.sessions.Complete(r.Context(), userID, sessionID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, session)
}

// List returns all of the caller's sessions.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	sessions, err := h.sessions.List(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessions)
}

// Today returns the caller's sessions started since midnight.
func (h *SessionHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	sessions, err := h.sessions.Today(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sessions)
}

// FocusStats sums the caller's completed work sessions over a period.
func (h *SessionHandler) FocusStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	stats, err := h.sessions.FocusStats(r.Context(), userID, chi.URLParam(r, "period"))
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
