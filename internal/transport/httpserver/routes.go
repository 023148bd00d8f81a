package httpserver

import (
	"net/http"
	"time"

	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/transport/httpserver/handler"
	authmw "wedding-rsvp/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg config.Config, handlers *handler.Handlers, auth *authmw.SupabaseAuth, limiter *authmw.RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(authmw.NewCORS(cfg.CORS.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Common.Health)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)

			r.Post("/auth/login", handlers.Common.Login)
			r.Post("/rsvps", handlers.RSVPs.SubmitRSVP)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/auth/me", handlers.Common.AuthMe)
			r.Post("/auth/logout", handlers.Common.Logout)

			r.Get("/rsvps", handlers.RSVPs.ListRSVPs)
			r.Get("/rsvps/{id}", handlers.RSVPs.GetRSVP)
			r.Put("/rsvps/{id}", handlers.RSVPs.UpdateRSVP)
			r.Delete("/rsvps/{id}", handlers.RSVPs.DeleteRSVP)
		})
	})

	return r
}
