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

// TaskRepository handles task data access.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, completed, priority, due_date, created_at, updated_at, completed_at`

// ListByUser returns all tasks for a user, newest first.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Task, error) {
	tasks := []domain.Task{}
	err := r.db.SelectContext(ctx, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FindByID retrieves a task by its ID.
func (r *TaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	var task domain.Task
	err := r.db.GetContext(ctx, &task,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find task by id %s: %w", id, err)
	}
	return &task, nil
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task domain.Task) (*domain.Task, error) {
	var result domain.Task
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, completed, priority, due_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		task.ID, task.UserID, task.Title, task.Description, task.Completed, task.Priority, task.DueDate,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &result, nil
}

// Update rewrites a task's mutable fields.
func (r *TaskRepository) Update(ctx context.Context, task domain.Task) (*domain.Task, error) {
	var result domain.Task
	err := r.db.QueryRowxContext(ctx,
		`UPDATE tasks
		 SET title = $2, description = $3, completed = $4, priority = $5,
		     due_date = $6, completed_at = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+taskColumns,
		task.ID, task.Title, task.Description, task.Completed, task.Priority, task.DueDate, task.CompletedAt,
	).StructScan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update task %s: %w", task.ID, err)
	}
	return &result, nil
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountByUser returns the total number of tasks a user owns.
func (r *TaskRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// CountCompletedByUser returns the number of completed tasks a user owns.
func (r *TaskRepository) CountCompletedByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND completed = TRUE`, userID)
	if err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return count, nil
}

// CountCompletedBetween returns the number of tasks completed in [start, end).
func (r *TaskRepository) CountCompletedBetween(ctx context.Context, userID uuid.UUID, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tasks
		 WHERE user_id = $1 AND completed = TRUE AND completed_at >= $2 AND completed_at < $3`,
		userID, start, end)
	if err != nil {
		return 0, fmt.Errorf("count completed tasks in range: %w", err)
	}
	return count, nil
}
