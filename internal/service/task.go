package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/domain"
)

// TaskStore defines the task data access interface consumed by TaskService.
type TaskStore interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	Create(ctx context.Context, task domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountCompletedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error)
}

// TaskService handles task business logic. Every mutation checks that the
// caller's verified user id owns the record.
type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// TaskParams carries the client-editable fields of a task.
type TaskParams struct {
	Title       string
	Description *string
	Priority    domain.TaskPriority
	DueDate     *time.Time
	Completed   bool
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	return s.tasks.ListByUser(ctx, userID)
}

// Create adds a new task for the user.
func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, params TaskParams) (*domain.Task, error) {
	priority := params.Priority
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}

	task := domain.Task{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       params.Title,
		Description: params.Description,
		Priority:    priority,
		DueDate:     params.DueDate,
	}
	task.SetCompleted(params.Completed, s.now())

	return s.tasks.Create(ctx, task)
}

// Update rewrites a task the user owns.
func (s *TaskService) Update(ctx context.Context, userID, taskID uuid.UUID, params TaskParams) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.Title = params.Title
	task.Description = params.Description
	if params.Priority != "" {
		task.Priority = params.Priority
	}
	task.DueDate = params.DueDate
	if task.Completed != params.Completed {
		task.SetCompleted(params.Completed, s.now())
	}

	return s.tasks.Update(ctx, *task)
}

// Delete removes a task the user owns.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.ownedTask(ctx, userID, taskID); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, taskID)
}

// Toggle flips a task's completion state, stamping or clearing the
// completion time.
func (s *TaskService) Toggle(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task.SetCompleted(!task.Completed, s.now())
	return s.tasks.Update(ctx, *task)
}

// Stats summarizes the user's tasks, counting today's completions from the
// local midnight boundary.
func (s *TaskService) Stats(ctx context.Context, userID uuid.UUID) (*domain.TaskStats, error) {
	total, err := s.tasks.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}
	completed, err := s.tasks.CountCompletedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}

	startOfDay := startOfDay(s.now())
	todayCompleted, err := s.tasks.CountCompletedBetween(ctx, userID, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}

	stats := &domain.TaskStats{
		TotalTasks:     total,
		CompletedTasks: completed,
		TodayCompleted: todayCompleted,
	}
	if total > 0 {
		stats.CompletionRate = float64(completed) / float64(total)
	}
	return stats, nil
}

func (s *TaskService) ownedTask(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
