package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitjakurath/klar/internal/auth"
	"github.com/mitjakurath/klar/internal/domain"
	"github.com/mitjakurath/klar/internal/service"
	"github.com/mitjakurath/klar/internal/token"
)

type stubProvider struct {
	name    domain.AuthProvider
	profile *auth.Profile
}

func (p *stubProvider) Name() domain.AuthProvider { return p.name }

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (p *stubProvider) Exchange(context.Context, string) (*auth.Profile, error) {
	return p.profile, nil
}

type memUserStore struct {
	byEmail map[string]*domain.User
}

func (s *memUserStore) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *memUserStore) UpsertByEmail(_ context.Context, user domain.User) (*domain.User, error) {
	if existing, ok := s.byEmail[user.Email]; ok {
		return existing, nil
	}
	s.byEmail[user.Email] = &user
	return &user, nil
}

type noopEnsurer struct{}

func (noopEnsurer) EnsureDefaults(context.Context, uuid.UUID) error { return nil }

type countingRecorder struct {
	success int
	failure int
}

func (c *countingRecorder) RecordLogin(_, outcome string) {
	if outcome == "success" {
		c.success++
	} else {
		c.failure++
	}
}

type authEnv struct {
	router http.Handler
	users  *memUserStore
	tokens *token.Service
	logins *countingRecorder
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()

	users := &memUserStore{byEmail: make(map[string]*domain.User)}
	tokens := token.NewService("test-secret", time.Hour)
	logins := &countingRecorder{}

	svc := service.NewAuthService([]auth.Provider{
		&stubProvider{name: domain.AuthProviderGoogle, profile: &auth.Profile{
			Provider:  domain.AuthProviderGoogle,
			SubjectID: "sub-1",
			Email:     "a@x.com",
			Name:      "A",
		}},
	}, users, noopEnsurer{}, tokens, "http://localhost:1420/")

	router := NewRouter(RouterConfig{
		Auth:          NewAuthHandler(svc, logins),
		Tokens:        svc,
		Users:         users,
		AllowedOrigin: "http://localhost:1420",
	})
	return &authEnv{router: router, users: users, tokens: tokens, logins: logins}
}

// login runs the full handshake and returns the token handed back in the
// redirect URL.
func (e *authEnv) login(t *testing.T) string {
	t.Helper()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)

	var state *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == stateCookieName {
			state = c
		}
	}
	require.NotNil(t, state, "redirect must set the state cookie")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state="+state.Value, nil)
	req.AddCookie(state)
	rec = httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "true", loc.Query().Get("success"))

	tok := loc.Query().Get("token")
	require.NotEmpty(t, tok)
	return tok
}

func TestLoginHandshake_EndToEnd(t *testing.T) {
	env := newAuthEnv(t)

	tok := env.login(t)
	assert.Equal(t, 1, env.logins.success)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		User  domain.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "a@x.com", body.User.Email)
	assert.NotEmpty(t, body.Token)
}

func TestCallback_StateMismatch(t *testing.T) {
	env := newAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?code=c&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "original"})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 1, env.logins.failure)
}

func TestCallback_MissingCode(t *testing.T) {
	env := newAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?state=s", nil)
	req.AddCookie(&http.Cookie{Name: stateCookieName, Value: "s"})
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMe_DeletedUser(t *testing.T) {
	env := newAuthEnv(t)

	// Structurally valid credential whose subject is not in the directory.
	tok, err := env.tokens.Issue(uuid.New())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenReissue_RoundTrip(t *testing.T) {
	env := newAuthEnv(t)
	tok := env.login(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotEmpty(t, body.Token)

	// The fresh credential is accepted on the very next request.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
