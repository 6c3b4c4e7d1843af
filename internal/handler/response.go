package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mitjakurath/klar/internal/domain"
)

// APIError is the error payload in an error response.
type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// WriteError maps a domain error to its HTTP response. Authentication
// failures are deliberately indistinguishable: status 401, empty body, no
// hint whether the credential was missing, malformed, tampered or expired.
func WriteError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	status, apiErr := mapError(err)
	WriteJSON(w, status, map[string]*APIError{"error": apiErr})
}

func mapError(err error) (int, *APIError) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, &APIError{
			Code:    "not_found",
			Message: "The requested resource was not found",
		}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, &APIError{
			Code:    "forbidden",
			Message: "You do not have permission to perform this action",
		}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, &APIError{
			Code:    "invalid_input",
			Message: "The request is invalid",
		}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, &APIError{
			Code:    "conflict",
			Message: "The resource already exists or conflicts with current state",
		}
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable, &APIError{
			Code:    "unavailable",
			Message: "An upstream dependency is unavailable, try again later",
		}
	default:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return http.StatusBadRequest, &APIError{
				Code:    "validation_error",
				Message: "Validation failed",
				Details: []FieldError{
					{Field: validationErr.Field, Message: validationErr.Message},
				},
			}
		}

		slog.Error("unhandled error", "error", err)
		return http.StatusInternalServerError, &APIError{
			Code:    "internal_error",
			Message: "An unexpected error occurred",
		}
	}
}
