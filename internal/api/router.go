package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds and returns the Chi router with all routes configured.
// Health is open, the forecast accepts an optional bearer that raises the
// paging horizon, and favorites require bearer auth.
// Rate limiting is applied globally: 60 requests per minute per IP.
func NewRouter(handlers *Handlers, token string, db, redisClient pinger, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))

	r.With(OptionalBearer(token)).Get("/api/v1/forecast", handlers.GetForecast)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Get("/api/v1/users/{id}/favorites", handlers.GetFavorites)
		r.Post("/api/v1/users/{id}/favorites", handlers.AddFavorite)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
