package router

import (
	"github.com/reuben-idan/alx-backend-storage/internal/handler"
	"github.com/reuben-idan/alx-backend-storage/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler      *handler.Handler
	CacheHandler *handler.CacheHandler
	PageHandler  *handler.PageHandler
	AdminHandler *handler.AdminHandler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Cache endpoints
		if cfg.CacheHandler != nil {
			r.Route("/cache", func(r chi.Router) {
				r.Post("/", cfg.CacheHandler.StoreValue)
				r.Get("/replay/{method}", cfg.CacheHandler.Replay)
				r.Get("/{key}", cfg.CacheHandler.GetValue)
			})
		}

		// Web cache endpoints
		if cfg.PageHandler != nil {
			r.Route("/page", func(r chi.Router) {
				r.Get("/", cfg.PageHandler.GetPage)
				r.Get("/count", cfg.PageHandler.GetPageCount)
			})
		}

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", cfg.AdminHandler.GetStats)
				r.Get("/fetches", cfg.AdminHandler.ListFetches)
			})
		}
	})

	return r
}
