package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitjakurath/klar/internal/domain"
	"github.com/mitjakurath/klar/internal/token"
)

type verifierFunc func(tokenString string) (uuid.UUID, error)

func (f verifierFunc) VerifyToken(tokenString string) (uuid.UUID, error) {
	return f(tokenString)
}

type recordingDirectory struct {
	users map[uuid.UUID]*domain.User
	calls int
}

func (d *recordingDirectory) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	d.calls++
	user, ok := d.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func gatedEcho(tokens TokenVerifier, users UserDirectory, requireActiveUser bool, seen *uuid.UUID) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		if !ok {
			http.Error(w, "no user id in context", http.StatusInternalServerError)
			return
		}
		*seen = id
		w.WriteHeader(http.StatusNoContent)
	})
	return BearerAuth(tokens, users, requireActiveUser)(next)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	dir := &recordingDirectory{}
	var seen uuid.UUID
	h := gatedEcho(verifierFunc(func(string) (uuid.UUID, error) {
		t.Fatal("verifier must not run without a header")
		return uuid.Nil, nil
	}), dir, true, &seen)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, dir.calls)
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	var seen uuid.UUID
	h := gatedEcho(verifierFunc(func(string) (uuid.UUID, error) {
		t.Fatal("verifier must not run for a non-bearer header")
		return uuid.Nil, nil
	}), &recordingDirectory{}, false, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	tokens := token.NewService("secret", time.Nanosecond)
	userID := uuid.New()
	tok, err := tokens.Issue(userID)
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	var seen uuid.UUID
	h := gatedEcho(verifierFunc(tokens.Verify), &recordingDirectory{}, false, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, uuid.Nil, seen)
}

func TestBearerAuth_ValidTokenInjectsUserID(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	userID := uuid.New()
	tok, err := tokens.Issue(userID)
	require.NoError(t, err)

	dir := &recordingDirectory{}
	var seen uuid.UUID
	h := gatedEcho(verifierFunc(tokens.Verify), dir, false, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, userID, seen)
	// Stateless verification: no directory lookup.
	assert.Zero(t, dir.calls)
}

func TestBearerAuth_DeletedUserTokenStillPasses(t *testing.T) {
	// Without the per-request existence check, a credential outlives the
	// deletion of its user until expiry. Handlers that load the user get a
	// 404 instead.
	tokens := token.NewService("secret", time.Hour)
	tok, err := tokens.Issue(uuid.New())
	require.NoError(t, err)

	var seen uuid.UUID
	h := gatedEcho(verifierFunc(tokens.Verify), &recordingDirectory{}, false, &seen)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBearerAuth_RequireActiveUser(t *testing.T) {
	tokens := token.NewService("secret", time.Hour)
	active := uuid.New()
	deleted := uuid.New()
	dir := &recordingDirectory{users: map[uuid.UUID]*domain.User{
		active: {ID: active, Email: "a@x.com"},
	}}

	var seen uuid.UUID
	h := gatedEcho(verifierFunc(tokens.Verify), dir, true, &seen)

	activeTok, err := tokens.Issue(active)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+activeTok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, active, seen)

	deletedTok, err := tokens.Issue(deleted)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+deletedTok)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.String())
}
