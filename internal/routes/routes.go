package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/SayanChouni/osint/internal/handlers"
	"github.com/SayanChouni/osint/internal/middleware"
)

// SetupRoutes registers the webhook and ops endpoints.
func SetupRoutes(r *chi.Mux, bot *handlers.Bot, logStream *handlers.LogStreamHandler, rdb *redis.Client) {
	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(rdb))
		r.Post("/webhook", bot.Webhook)
		r.Get("/webhook", bot.WebhookStatus)
	})

	r.Get("/ws/logs", logStream.ServeHTTP)
}
