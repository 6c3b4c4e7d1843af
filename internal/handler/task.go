package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/domain"
	"github.com/mitjakurath/klar/internal/service"
)

// TaskHandler handles task endpoints.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type taskRequest struct {
	Title       string              `json:"title" validate:"required"`
	Description *string             `json:"description"`
	Priority    domain.TaskPriority `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time          `json:"dueDate"`
	Completed   bool                `json:"completed"`
}

func (req taskRequest) params() service.TaskParams {
	return service.TaskParams{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
	}
}

// List returns the caller's tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, tasks)
}

// Create adds a new task for the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	var req taskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	task, err := h.tasks.Create(r.Context(), userID, req.params())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// Update rewrites a task the caller owns.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req taskRequest
	if err := decodeAndValidate(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	task, err := h.tasks.Update(r.Context(), userID, taskID, req.params())
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// Delete removes a task the caller owns.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Toggle flips a task's completion state.
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	taskID, err := pathID(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	task, err := h.tasks.Toggle(r.Context(), userID, taskID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

// Stats summarizes the caller's tasks.
func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	stats, err := h.tasks.Stats(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id", domain.ErrInvalidInput)
	}
	return id, nil
}
