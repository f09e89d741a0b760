// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package thumbnail resolves header images for catalog items.
//
// The URL is derived purely from the app id, so resolution never needs
// catalog data. An optional HEAD probe verifies that the CDN actually
// serves the image; probe failures degrade to a placeholder and are
// isolated behind a circuit breaker so a struggling CDN cannot slow
// down the query path.
package thumbnail

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/steamlens/steamlens/internal/logging"
	"github.com/steamlens/steamlens/internal/metrics"
)

// DefaultBaseURL is the Steam CDN root for header images.
const DefaultBaseURL = "https://cdn.akamai.steamstatic.com/steam/apps"

// Resolver maps an app id to a displayable image URL.
type Resolver interface {
	Resolve(ctx context.Context, appID int64) string
}

// HeaderURL derives the CDN header image URL for an app id.
func HeaderURL(baseURL string, appID int64) string {
	return fmt.Sprintf("%s/%d/header.jpg", strings.TrimSuffix(baseURL, "/"), appID)
}

// Static derives URLs without any network verification.
type Static struct {
	BaseURL string
}

// Resolve returns the derived URL unconditionally.
func (s Static) Resolve(_ context.Context, appID int64) string {
	base := s.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return HeaderURL(base, appID)
}

// Prober verifies derived URLs with a HEAD request. Any failure — a
// transport error, a non-2xx status, or an open breaker — yields the
// placeholder instead of an error.
type Prober struct {
	baseURL     string
	placeholder string
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker[int]
}

// ProberConfig configures a Prober.
type ProberConfig struct {
	BaseURL     string
	Placeholder string
	Timeout     time.Duration

	// Client overrides the probe HTTP client; tests inject one backed
	// by httptest.
	Client *http.Client
}

// NewProber creates a probing resolver.
func NewProber(cfg ProberConfig) *Prober {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	settings := gobreaker.Settings{
		Name:    "thumbnail-probe",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Thumbnail breaker state changed")
		},
	}

	return &Prober{
		baseURL:     cfg.BaseURL,
		placeholder: cfg.Placeholder,
		client:      client,
		breaker:     gobreaker.NewCircuitBreaker[int](settings),
	}
}

// Resolve probes the derived URL and returns it on success, or the
// placeholder on any failure.
func (p *Prober) Resolve(ctx context.Context, appID int64) string {
	url := HeaderURL(p.baseURL, appID)

	_, err := p.breaker.Execute(func() (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, http.NoBody)
		if err != nil {
			return 0, err
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, fmt.Errorf("probe status %d", resp.StatusCode)
		}
		return resp.StatusCode, nil
	})
	if err != nil {
		metrics.ThumbnailFallbacks.Inc()
		logging.Debug().Err(err).Int64("app_id", appID).Msg("Thumbnail probe failed")
		return p.placeholder
	}
	return url
}
