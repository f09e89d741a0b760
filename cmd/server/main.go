// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Command server runs the SteamLens recommendation service.
//
// Startup order matters: configuration, then logging, then the catalog
// and feature artifacts (any artifact problem is fatal), then the HTTP
// server under the supervisor tree. SIGINT/SIGTERM trigger a graceful
// shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/steamlens/steamlens/internal/api"
	"github.com/steamlens/steamlens/internal/cache"
	"github.com/steamlens/steamlens/internal/catalog"
	"github.com/steamlens/steamlens/internal/config"
	"github.com/steamlens/steamlens/internal/features"
	"github.com/steamlens/steamlens/internal/library"
	"github.com/steamlens/steamlens/internal/logging"
	"github.com/steamlens/steamlens/internal/metrics"
	"github.com/steamlens/steamlens/internal/recommend"
	"github.com/steamlens/steamlens/internal/supervisor"
	"github.com/steamlens/steamlens/internal/supervisor/services"
	"github.com/steamlens/steamlens/internal/thumbnail"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Loading configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().Msg("Starting SteamLens")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.LoadCSV(ctx, cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Loading catalog artifact")
	}
	metrics.CatalogItems.Set(float64(store.Len()))

	matrix, err := features.Load(cfg.Catalog.FeaturesPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Loading feature artifact")
	}

	engine, err := recommend.NewEngine(store, matrix,
		logging.With().Str("component", "engine").Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Artifacts are inconsistent")
	}

	results := cache.NewResultCache(cfg.Cache.Capacity, cfg.Cache.TTL)
	libraries := library.NewStore(cfg.Session.TTL, cfg.Session.MaxSessions)

	var thumbs thumbnail.Resolver
	if cfg.Thumbnail.Enabled {
		thumbs = thumbnail.NewProber(thumbnail.ProberConfig{
			BaseURL:     cfg.Thumbnail.BaseURL,
			Placeholder: cfg.Thumbnail.Placeholder,
			Timeout:     cfg.Thumbnail.ProbeTimeout,
		})
	} else {
		thumbs = thumbnail.Static{BaseURL: cfg.Thumbnail.BaseURL}
	}

	handler := api.NewHandler(store, engine, results, libraries, thumbs, cfg)
	router := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Session-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimit,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  !cfg.Security.EnableRateLimits,
	}))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Listening")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Err(err).Msg("Supervisor stopped with error")
		}
	case err := <-errCh:
		if err != nil {
			logging.Err(err).Msg("Supervisor stopped unexpectedly")
		}
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}
	logging.Info().Msg("Shutdown complete")
}
