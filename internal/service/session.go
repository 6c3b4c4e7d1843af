package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/domain"
)

// SessionStore defines the session data access interface consumed by
// SessionService.
type SessionStore interface {
	Create(ctx context.Context, session domain.FocusSession) (*domain.FocusSession, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FocusSession, error)
	Update(ctx context.Context, session domain.FocusSession) (*domain.FocusSession, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.FocusSession, error)
	ListByUserBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]domain.FocusSession, error)
}

// SessionService handles focus session business logic.
type SessionService struct {
	sessions SessionStore
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions SessionStore) *SessionService {
	return &SessionService{sessions: sessions, now: time.Now}
}

// Start records a new running session beginning now.
func (s *SessionService) Start(ctx context.Context, userID uuid.UUID, duration int, sessionType domain.SessionType, taskID *uuid.UUID) (*domain.FocusSession, error) {
	return s.sessions.Create(ctx, domain.FocusSession{
		ID:        uuid.New(),
		UserID:    userID,
		TaskID:    taskID,
		Duration:  duration,
		Type:      sessionType,
		StartTime: s.now(),
	})
}

// SessionUpdate carries the client-editable fields of a session. Nil
// pointers leave the stored value unchanged.
type SessionUpdate struct {
	Duration  *int
	Type      *domain.SessionType
	Completed *bool
}

// Update rewrites a session the user owns.
func (s *SessionService) Update(ctx context.Context, userID, sessionID uuid.UUID, update SessionUpdate) (*domain.FocusSession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if update.Duration != nil {
		session.Duration = *update.Duration
	}
	if update.Type != nil {
		session.Type = *update.Type
	}
	if update.Completed != nil && *update.Completed && !session.Completed {
		session.Complete(s.now())
	}

	return s.sessions.Update(ctx, *session)
}

// Complete marks a session the user owns as finished.
func (s *SessionService) Complete(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FocusSession, error) {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	session.Complete(s.now())
	return s.sessions.Update(ctx, *session)
}

// List returns all of the user's sessions, newest first.
func (s *SessionService) List(ctx context.Context, userID uuid.UUID) ([]domain.FocusSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// Today returns the user's sessions started since local midnight.
func (s *SessionService) Today(ctx context.Context, userID uuid.UUID) ([]domain.FocusSession, error) {
	start := startOfDay(s.now())
	return s.sessions.ListByUserBetween(ctx, userID, start, start.AddDate(0, 0, 1))
}

// FocusStats sums completed work sessions over the named period: "today",
// "week" (last 7 days) or "month" (last 30 days). Unknown periods fall
// back to today.
func (s *SessionService) FocusStats(ctx context.Context, userID uuid.UUID, period string) (*domain.FocusStats, error) {
	today := startOfDay(s.now())
	var start time.Time
	end := today.AddDate(0, 0, 1)

	switch period {
	case "week":
		start = today.AddDate(0, 0, -6)
	case "month":
		start = today.AddDate(0, 0, -29)
	case "today":
		start = today
	default:
		period = "today"
		start = today
	}

	sessions, err := s.sessions.ListByUserBetween(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("focus stats: %w", err)
	}

	stats := &domain.FocusStats{Period: period}
	for _, session := range sessions {
		if !session.Completed || session.Type != domain.SessionTypeWork {
			continue
		}
		stats.TotalMinutes += session.Duration
		stats.CompletedSessions++
	}
	return stats, nil
}

func (s *SessionService) ownedSession(ctx context.Context, userID, sessionID uuid.UUID) (*domain.FocusSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return session, nil
}
