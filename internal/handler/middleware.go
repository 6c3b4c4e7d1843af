package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mitjakurath/klar/internal/domain"
)

type contextKey int

const userIDKey contextKey = iota

// SetUserID returns a context carrying the verified user id.
func SetUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the verified user id placed by the auth gateway.
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

// TokenVerifier validates a bearer credential and returns its subject.
type TokenVerifier interface {
	VerifyToken(tokenString string) (uuid.UUID, error)
}

// UserDirectory is the lookup the gateway uses when configured to re-check
// user existence per request.
type UserDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// BearerAuth is the authentication gateway: it extracts and verifies the
// bearer credential and injects the subject user id into the request
// context. Any failure stops the request with a bodiless 401 before a
// business handler runs. When requireActiveUser is set, the subject is
// additionally re-checked against the directory on every request;
// otherwise a token outlives the deletion of its user until expiry.
func BearerAuth(tokens TokenVerifier, users UserDirectory, requireActiveUser bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				WriteError(w, domain.ErrUnauthorized)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				WriteError(w, domain.ErrUnauthorized)
				return
			}

			userID, err := tokens.VerifyToken(parts[1])
			if err != nil {
				WriteError(w, domain.ErrUnauthorized)
				return
			}

			if requireActiveUser {
				if _, err := users.FindByID(r.Context(), userID); err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						WriteError(w, domain.ErrUnauthorized)
					} else {
						WriteError(w, err)
					}
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(SetUserID(r.Context(), userID)))
		})
	}
}

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Recover converts panics into 500 responses instead of dropped
// connections.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered",
					"panic", rec,
					"path", r.URL.Path,
				)
				WriteJSON(w, http.StatusInternalServerError, map[string]*APIError{
					"error": {Code: "internal_error", Message: "An unexpected error occurred"},
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
