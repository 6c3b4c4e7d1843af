package handler

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mitjakurath/klar/internal/domain"
	"github.com/mitjakurath/klar/internal/service"
)

const stateCookieName = "oauth_state"

// LoginRecorder counts login-handshake outcomes.
type LoginRecorder interface {
	RecordLogin(provider, outcome string)
}

// AuthHandler handles the login handshake and the identity endpoints.
type AuthHandler struct {
	auth   *service.AuthService
	logins LoginRecorder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, logins LoginRecorder) *AuthHandler {
	return &AuthHandler{auth: auth, logins: logins}
}

// Redirect sends the browser to the provider's consent page, binding the
// round trip with a random state cookie.
func (h *AuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	state := generateState()
	authURL, err := h.auth.AuthCodeURL(provider, state)
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback completes the handshake: it validates the state round trip,
// runs the login chain and hands the browser back to the client app with
// the fresh credential in the redirect URL.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	if err := validateState(r); err != nil {
		h.logins.RecordLogin(provider, "failure")
		WriteError(w, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.logins.RecordLogin(provider, "failure")
		WriteError(w, fmt.Errorf("%w: missing code parameter", domain.ErrInvalidInput))
		return
	}

	result, err := h.auth.CompleteLogin(r.Context(), provider, code)
	if err != nil {
		h.logins.RecordLogin(provider, "failure")
		WriteError(w, err)
		return
	}

	h.logins.RecordLogin(provider, "success")
	http.Redirect(w, r, result.RedirectURL, http.StatusFound)
}

// Me returns the authenticated user's profile with a freshly issued
// credential. A structurally valid token whose subject no longer exists
// yields 404: the gateway does not re-check existence, this handler does.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	user, tok, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": tok,
	})
}

// Token reissues a credential for the authenticated user.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		WriteError(w, domain.ErrUnauthorized)
		return
	}

	tok, err := h.auth.ReissueToken(r.Context(), userID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}

func validateState(r *http.Request) error {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return fmt.Errorf("missing %s cookie", stateCookieName)
	}

	queryState := r.URL.Query().Get("state")
	if queryState == "" || queryState != cookie.Value {
		return fmt.Errorf("state mismatch")
	}
	return nil
}
