package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/eventlens/api/internal/domain"
	"github.com/eventlens/api/internal/service"
)

// AuthHandler drives the OAuth redirect dance and hands account decisions to
// the resolver. One pair of handlers serves every provider.
type AuthHandler struct {
	resolver    *service.AccountResolver
	providers   *service.OAuthProviders
	validate    *AppValidator
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(resolver *service.AccountResolver, providers *service.OAuthProviders, validate *AppValidator, frontendURL string) *AuthHandler {
	return &AuthHandler{
		resolver:    resolver,
		providers:   providers,
		validate:    validate,
		frontendURL: frontendURL,
	}
}

// Redirect sends the user agent to the provider's consent page.
func (h *AuthHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	provider := domain.Provider(chi.URLParam(r, "provider"))
	if !provider.Valid() {
		WriteError(w, fmt.Errorf("%w: unknown provider", domain.ErrInvalidInput))
		return
	}

	state := generateState()
	authURL, err := h.providers.AuthCodeURL(provider, state)
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback handles the provider redirect. Any failure degrades to a redirect
// to the login page; no error detail reaches the browser.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := domain.Provider(chi.URLParam(r, "provider"))
	if !provider.Valid() {
		h.redirectLogin(w, r)
		return
	}

	if err := validateOAuthState(r); err != nil {
		slog.Warn("oauth state validation failed", "provider", provider, "error", err)
		h.redirectLogin(w, r)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		h.redirectLogin(w, r)
		return
	}

	profile, err := h.providers.FetchProfile(r.Context(), provider, code)
	if err != nil {
		slog.Error("oauth profile fetch failed", "provider", provider, "error", err)
		h.redirectLogin(w, r)
		return
	}

	resolution, err := h.resolver.Resolve(r.Context(), provider, profile)
	if err != nil {
		slog.Error("account resolution failed", "provider", provider, "error", err)
		h.redirectLogin(w, r)
		return
	}

	if resolution.Pending != nil {
		q := url.Values{}
		q.Set("email", resolution.Pending.Email)
		q.Set("name", resolution.Pending.Name)
		q.Set("googleId", resolution.Pending.Subject)
		http.Redirect(w, r, h.frontendURL+"/complete-signup?"+q.Encode(), http.StatusFound)
		return
	}

	q := url.Values{}
	q.Set("token", resolution.Token)
	http.Redirect(w, r, h.frontendURL+"/auth/callback?"+q.Encode(), http.StatusFound)
}

type completeSignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Username string `json:"username" validate:"required"`
	GoogleID string `json:"googleId" validate:"required"`
}

// CompleteSignup finalizes the deferred Google signup with a chosen username.
func (h *AuthHandler) CompleteSignup(w http.ResponseWriter, r *http.Request) {
	var req completeSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	if err := h.validate.Validate(req); err != nil {
		WriteError(w, err)
		return
	}

	user, token, err := h.resolver.CompleteSignup(r.Context(), req.Email, req.Name, req.Username, req.GoogleID)
	if err != nil {
		WriteError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) redirectLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusFound)
}

func generateState() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "fallback-state"
	}
	return base64.URLEncoding.EncodeToString(b)
}

func validateOAuthState(r *http.Request) error {
	cookie, err := r.Cookie("oauth_state")
	if err != nil {
		return fmt.Errorf("missing oauth_state cookie")
	}

	queryState := r.URL.Query().Get("state")
	if queryState == "" || queryState != cookie.Value {
		return fmt.Errorf("state mismatch")
	}

	return nil
}
