package common

import (
	"context"

	"wedding-rsvp/internal/auth"
	"wedding-rsvp/pkg/logger"
)

// AuthService is the subset of the Supabase client the auth routes use.
type AuthService interface {
	SignInWithPassword(ctx context.Context, email, password string) (auth.Session, error)
	SignOut(ctx context.Context, token string) error
}

// SessionForgetter evicts a token from the verified-session cache.
type SessionForgetter interface {
	Forget(token string)
}

type Handlers struct {
	Auth     AuthService
	sessions SessionForgetter
	log      logger.Logger
}

func New(authService AuthService, sessions SessionForgetter, log logger.Logger) *Handlers {
	return &Handlers{
		Auth:     authService,
		sessions: sessions,
		log:      log,
	}
}
