package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"wedding-rsvp/internal/auth"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/pkg/logger"
)

const defaultSessionTTL = time.Minute

// TokenVerifier resolves a bearer token to the signed-in administrator.
type TokenVerifier interface {
	Configured() bool
	GetUser(ctx context.Context, token string) (auth.User, error)
}

type SessionCache interface {
	GetByToken(token string) (auth.User, bool)
	SetByToken(token string, user auth.User, ttl time.Duration)
	DeleteByToken(token string)
}

type SupabaseAuth struct {
	verifier   TokenVerifier
	sessions   SessionCache
	sessionTTL time.Duration
	skipAuth   bool
	mockUser   auth.User
	log        logger.Logger
}

type contextKey int

const (
	userKey contextKey = iota
	tokenKey
)

func NewSupabaseAuth(cfg config.SupabaseConfig, verifier TokenVerifier, sessions SessionCache, log logger.Logger) *SupabaseAuth {
	return &SupabaseAuth{
		verifier:   verifier,
		sessions:   sessions,
		sessionTTL: defaultSessionTTL,
		skipAuth:   cfg.SkipAuth,
		mockUser: auth.User{
			ID:        strings.TrimSpace(cfg.MockUserID),
			Email:     strings.TrimSpace(cfg.MockUserEmail),
			Name:      strings.TrimSpace(cfg.MockUserName),
			AvatarURL: strings.TrimSpace(cfg.MockUserAvatar),
		},
		log: log,
	}
}

func (a *SupabaseAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.skipAuth {
			user := a.mockUser
			if user.ID == "" {
				writeError(w, http.StatusInternalServerError, "auth_not_configured", "auth mock user id not configured")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
			return
		}

		if a.verifier == nil || !a.verifier.Configured() {
			a.log.Error("auth: supabase url or publishable key missing")
			writeError(w, http.StatusInternalServerError, "auth_not_configured", auth.ErrNotConfigured.Error())
			return
		}

		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		if a.sessions != nil {
			if user, ok := a.sessions.GetByToken(token); ok {
				next.ServeHTTP(w, r.WithContext(withToken(WithUser(r.Context(), user), token)))
				return
			}
		}

		user, err := a.verifier.GetUser(r.Context(), token)
		if err != nil {
			if !errors.Is(err, auth.ErrInvalidToken) {
				a.log.InternalError("auth: verify token failed", err)
			}
			unauthorized(w)
			return
		}

		if a.sessions != nil {
			a.sessions.SetByToken(token, user, a.sessionTTL)
		}

		next.ServeHTTP(w, r.WithContext(withToken(WithUser(r.Context(), user), token)))
	})
}

// Forget drops a token from the session cache, used on sign-out.
func (a *SupabaseAuth) Forget(token string) {
	if a.sessions != nil && token != "" {
		a.sessions.DeleteByToken(token)
	}
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user auth.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func UserFromContext(ctx context.Context) (auth.User, bool) {
	user, ok := ctx.Value(userKey).(auth.User)
	if !ok || user.ID == "" {
		return auth.User{}, false
	}
	return user, true
}

// TokenFromContext returns the bearer token the request was authenticated
// with. It is empty when AUTH_SKIP injected a mock user.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
