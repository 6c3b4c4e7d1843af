package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mitjakurath/klar/internal/domain"
)

// SessionRepository handles focus session data access.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, task_id, duration, type, completed, start_time, end_time, created_at`

// Create inserts a new focus session.
func (r *SessionRepository) Create(ctx context.Context, session domain.FocusSession) (*domain.FocusSession, error) {
	var result domain.FocusSession
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO focus_sessions (id, user_id, task_id, duration, type, completed, start_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+sessionColumns,
		session.ID, session.UserID, session.TaskID, session.Duration, session.Type, session.Completed, session.StartTime,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &result, nil
}

// FindByID retrieves a session by its ID.
func (r *SessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FocusSession, error) {
	var session domain.FocusSession
	err := r.db.GetContext(ctx, &session,
		`SELECT `+sessionColumns+` FROM focus_sessions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find session by id %s: %w", id, err)
	}
	return &session, nil
}

// Update rewrites a session's mutable fields.
func (r *SessionRepository) Update(ctx context.Context, session domain.FocusSession) (*domain.FocusSession, error) {
	var result domain.FocusSession
	err := r.db.QueryRowxContext(ctx,
		`UPDATE focus_sessions
		 SET task_id = $2, duration = $3, type = $4, completed = $5, end_time = $6
		 WHERE id = $1
		 RETURNING `+sessionColumns,
		session.ID, session.TaskID, session.Duration, session.Type, session.Completed, session.EndTime,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update session %s: %w", session.ID, err)
	}
	return &result, nil
}

// ListByUser returns all sessions for a user, newest first.
func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.FocusSession, error) {
	sessions := []domain.FocusSession{}
	err := r.db.SelectContext(ctx, &sessions,
		`SELECT `+sessionColumns+` FROM focus_sessions WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListByUserBetween returns sessions whose start time falls in [start, end),
// newest first.
func (r *SessionRepository) ListByUserBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]domain.FocusSession, error) {
	sessions := []domain.FocusSession{}
	err := r.db.SelectContext(ctx, &sessions,
		`SELECT `+sessionColumns+` FROM focus_sessions
		 WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		 ORDER BY start_time DESC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list sessions in range: %w", err)
	}
	return sessions, nil
}
