package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-relay-bot/internal/transport/http/handler"
)

// NewRouter builds the ops router: health check plus read-only bot stats.
func NewRouter(stats handler.StatsProvider) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	opsH := handler.NewOpsHandler(stats)
	r.Get("/healthz", opsH.Health)
	r.Get("/stats", opsH.Stats)

	return r
}
