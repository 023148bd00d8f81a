package common

import (
	"errors"
	"net/http"
	"strings"

	"wedding-rsvp/internal/auth"
	"wedding-rsvp/internal/transport/httpserver/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	TokenType    string         `json:"token_type"`
	ExpiresIn    int            `json:"expires_in"`
	User         authMeResponse `json:"user"`
}

type authMeResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	session, err := h.Auth.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.log.BusinessError("auth.login: invalid credentials", err)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid login credentials")
		case errors.Is(err, auth.ErrNotConfigured):
			h.log.Error("auth.login: supabase not configured")
			writeError(w, http.StatusInternalServerError, "auth_not_configured", err.Error())
		default:
			h.log.InternalError("auth.login: sign in failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    session.TokenType,
		ExpiresIn:    session.ExpiresIn,
		User:         toAuthMeResponse(session.User),
	})
}

// Logout revokes the caller's session. A mock session (AUTH_SKIP) has no token
// and is a no-op.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if h.sessions != nil {
		h.sessions.Forget(token)
	}

	if err := h.Auth.SignOut(r.Context(), token); err != nil && !errors.Is(err, auth.ErrInvalidToken) {
		h.log.InternalError("auth.logout: sign out failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	writeJSON(w, http.StatusOK, toAuthMeResponse(user))
}

func toAuthMeResponse(user auth.User) authMeResponse {
	return authMeResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}
}
