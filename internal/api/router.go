// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steamlens/steamlens/internal/middleware"
)

// NewRouter builds the chi router with the full middleware stack and
// every route of the service.
func NewRouter(h *Handler, mw *Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(SecurityHeaders)
	r.Use(middleware.Prometheus)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.RateLimit())

		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)

		r.Get("/catalog/stats", h.CatalogStats)
		r.Get("/search", h.Search)

		r.Route("/library", func(r chi.Router) {
			r.Get("/", h.GetLibrary)
			r.Delete("/", h.ClearLibrary)
			r.Post("/items", h.AddLibraryItem)
			r.Delete("/items/{title}", h.RemoveLibraryItem)
		})

		// Scoring the whole catalog is the expensive path; it gets a
		// tighter budget than the global limit.
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimitCustom(h.cfg.Security.QueryRateLimit, time.Minute))
			r.Post("/recommendations", h.Recommendations)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
