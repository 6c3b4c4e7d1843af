package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionType distinguishes focused work from breaks.
type SessionType string

const (
	SessionTypeWork       SessionType = "work"
	SessionTypeShortBreak SessionType = "short_break"
	SessionTypeLongBreak  SessionType = "long_break"
)

// FocusSession represents one timed pomodoro interval. Duration is minutes.
type FocusSession struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	UserID    uuid.UUID   `json:"userId" db:"user_id"`
	TaskID    *uuid.UUID  `json:"taskId,omitempty" db:"task_id"`
	Duration  int         `json:"duration" db:"duration"`
	Type      SessionType `json:"type" db:"type"`
	Completed bool        `json:"completed" db:"completed"`
	StartTime time.Time   `json:"startTime" db:"start_time"`
	EndTime   *time.Time  `json:"endTime,omitempty" db:"end_time"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// Complete marks the session finished. The end time is set once and kept on
// repeated completion calls.
func (s *FocusSession) Complete(now time.Time) {
	s.Completed = true
	if s.EndTime == nil {
		s.EndTime = &now
	}
}

// FocusStats summarizes completed work sessions over a period.
type FocusStats struct {
	TotalMinutes      int    `json:"totalMinutes"`
	CompletedSessions int64  `json:"completedSessions"`
	Period            string `json:"period"`
}
