package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotConfigured      = errors.New("auth not configured: SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required")
)
