package httpserver

import (
	"net/http"
	"time"

	"wedding-rsvp/internal/config"
)

// New wraps the router in an http.Server. Write timeout stays above the 30s
// request timeout middleware so handlers can still answer 503.
func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
