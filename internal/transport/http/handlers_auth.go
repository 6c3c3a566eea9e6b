package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"hauntedlights/internal/session"
	"hauntedlights/internal/tuya"
	derrors "hauntedlights/pkg/domain-errors"
)

type loginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CountryCode string `json:"countryCode"`
	Schema      string `json:"schema"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	UID     string `json:"uid"`
	Message string `json:"message"`
}

// handleLogin is the legacy direct-credential path, signed with the cloud
// project keys. The OAuth flow below is the recommended one.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, derrors.New(derrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, derrors.New(derrors.CodeBadRequest, "username and password required"))
		return
	}
	if req.CountryCode == "" {
		req.CountryCode = h.cfg.CountryCode
	}
	if req.Schema == "" {
		req.Schema = h.cfg.Schema
	}

	token, err := h.vendor.LoginPassword(r.Context(), req.Username, req.Password, req.CountryCode, req.Schema)
	if err != nil {
		h.logger.WarnContext(r.Context(), "login failed", "error", err)
		writeError(w, err)
		return
	}

	if err := h.establishSession(w, r, token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Success: true, UID: token.UID, Message: "Login successful"})
}

// handleSmartLifeAuth starts the Smart Life OAuth flow. The CSRF state token
// is bound to the caller through a short-lived cookie carrying its nonce.
func (h *Handler) handleSmartLifeAuth(w http.ResponseWriter, r *http.Request) {
	nonce := uuid.NewString()
	state, err := h.codec.IssueState(nonce)
	if err != nil {
		writeError(w, derrors.Wrap(err, derrors.CodeInternal, "failed to issue state token"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     session.StateCookieName,
		Value:    nonce,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})

	redirectURI := h.cfg.AppURL + "/api/auth-callback"
	http.Redirect(w, r, h.vendor.AuthorizeURL(redirectURI, state), http.StatusFound)
}

// handleAuthCallback validates the OAuth state, exchanges the code with the
// app keys and redirects back to the UI with the outcome in the query string.
func (h *Handler) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	// Consume the state cookie either way.
	http.SetCookie(w, &http.Cookie{
		Name:     session.StateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if code == "" || !h.validState(r, state) {
		h.logger.WarnContext(r.Context(), "oauth callback rejected", "has_code", code != "")
		http.Redirect(w, r, h.cfg.AppURL+"/?auth=failed", http.StatusFound)
		return
	}

	token, err := h.vendor.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.WarnContext(r.Context(), "oauth code exchange failed", "error", err)
		http.Redirect(w, r, h.cfg.AppURL+"/?auth=failed", http.StatusFound)
		return
	}

	if err := h.establishSession(w, r, token); err != nil {
		http.Redirect(w, r, h.cfg.AppURL+"/?auth=failed", http.StatusFound)
		return
	}
	http.Redirect(w, r, h.cfg.AppURL+"/?auth=success", http.StatusFound)
}

func (h *Handler) validState(r *http.Request, state string) bool {
	if state == "" {
		return false
	}
	nonce, err := h.codec.ParseState(state)
	if err != nil {
		return false
	}
	cookie, err := r.Cookie(session.StateCookieName)
	if err != nil {
		return false
	}
	return cookie.Value == nonce
}

// establishSession stores a fresh session for the exchanged token and sets the
// signed browser cookie. Re-authentication overwrites nothing: each login gets
// a new session ID, old sessions linger until restart.
func (h *Handler) establishSession(w http.ResponseWriter, r *http.Request, token tuya.Token) error {
	sess := &session.Session{
		ID:           uuid.NewString(),
		UID:          token.UID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.ExpiresAt,
	}
	if err := h.sessions.Put(r.Context(), sess); err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to store session")
	}

	value, err := h.codec.IssueSession(sess.ID)
	if err != nil {
		return derrors.Wrap(err, derrors.CodeInternal, "failed to issue session cookie")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(24 * time.Hour / time.Second),
		HttpOnly: true,
		Secure:   h.cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
