package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds the Chi router. Autocomplete and analytics are public
// (user-facing); the seed endpoint is operational and requires bearer
// auth. Rate limiting is applied globally: 120 requests per minute per IP,
// sized for autocomplete keystroke traffic after client-side debouncing.
func NewRouter(handlers *Handlers, token string, db dbPinger, redisClient redisPinger, metrics http.Handler, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redisClient, log))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Get("/api/v1/destinations/autocomplete", handlers.Autocomplete)
	r.Post("/api/v1/destinations/analytics", handlers.RecordSelection)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Post("/api/v1/destinations/seed", handlers.SeedCountry)
	})

	return r
}
