package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The route table is the authorization boundary: every business route must
// refuse unauthenticated requests with a bodiless 401, while the handshake
// and operational endpoints stay public.
func TestRouter_ProtectedRoutesRequireCredential(t *testing.T) {
	env := newAuthEnv(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/token"},
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/stats"},
		{http.MethodPut, "/api/tasks/0e0f7a9e-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/api/tasks/0e0f7a9e-0000-0000-0000-000000000001"},
		{http.MethodPatch, "/api/tasks/0e0f7a9e-0000-0000-0000-000000000001/toggle"},
		{http.MethodGet, "/api/sessions"},
		{http.MethodPost, "/api/sessions"},
		{http.MethodGet, "/api/sessions/today"},
		{http.MethodGet, "/api/sessions/focus-time/week"},
		{http.MethodGet, "/api/settings"},
		{http.MethodPut, "/api/settings"},
	}

	for _, tc := range protected {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestRouter_PublicRoutes(t *testing.T) {
	env := newAuthEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/gitlab", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
