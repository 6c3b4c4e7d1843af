package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskPriority represents the urgency of a task.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a to-do item owned by a single user.
type Task struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	UserID      uuid.UUID    `json:"userId" db:"user_id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description,omitempty" db:"description"`
	Completed   bool         `json:"completed" db:"completed"`
	Priority    TaskPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty" db:"due_date"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
	CompletedAt *time.Time   `json:"completedAt,omitempty" db:"completed_at"`
}

// SetCompleted flips the completion flag and keeps completed_at in sync.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.Completed = completed
	if completed {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
	t.UpdatedAt = now
}

// TaskStats summarizes a user's tasks.
type TaskStats struct {
	TotalTasks     int64   `json:"totalTasks"`
	CompletedTasks int64   `json:"completedTasks"`
	TodayCompleted int64   `json:"todayCompleted"`
	CompletionRate float64 `json:"completionRate"`
}
