// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package config provides layered configuration for SteamLens.
//
// Configuration is resolved in three layers, later layers overriding
// earlier ones:
//
//  1. Struct defaults (DefaultConfig)
//  2. Optional YAML file (config.yaml or STEAMLENS_CONFIG path)
//  3. Environment variables (STEAMLENS_ prefix)
//
// The resolved Config is validated once at startup and treated as
// immutable afterwards.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Engine    EngineConfig    `koanf:"engine"`
	Cache     CacheConfig     `koanf:"cache"`
	Session   SessionConfig   `koanf:"session"`
	Thumbnail ThumbnailConfig `koanf:"thumbnail"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CatalogConfig locates the startup artifacts.
type CatalogConfig struct {
	// Path is the catalog CSV (app_id, title, rating, price_final,
	// positive_ratio, win, mac, linux).
	Path string `koanf:"path"`

	// FeaturesPath is the sparse TF-IDF matrix JSON, one row per
	// catalog row in the same order.
	FeaturesPath string `koanf:"features_path"`

	// MaxSearchResults caps the search endpoint's limit parameter.
	MaxSearchResults int `koanf:"max_search_results"`
}

// EngineConfig holds recommendation defaults.
type EngineConfig struct {
	// DefaultCount is the number of recommendations returned when the
	// request does not specify one.
	DefaultCount int `koanf:"default_count"`

	// MaxCount bounds the per-request count parameter.
	MaxCount int `koanf:"max_count"`
}

// CacheConfig bounds the recommendation result cache.
type CacheConfig struct {
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// SessionConfig bounds the per-session library store.
type SessionConfig struct {
	TTL         time.Duration `koanf:"ttl"`
	MaxSessions int           `koanf:"max_sessions"`
}

// ThumbnailConfig controls header-image resolution.
type ThumbnailConfig struct {
	// Enabled turns on the HEAD probe; when false every item gets the
	// derived URL without verification.
	Enabled bool `koanf:"enabled"`

	ProbeTimeout time.Duration `koanf:"probe_timeout"`

	// BaseURL is the CDN template root; the app id and header.jpg are
	// appended to it.
	BaseURL string `koanf:"base_url"`

	// Placeholder is returned when a probe fails or the breaker is open.
	Placeholder string `koanf:"placeholder"`
}

// SecurityConfig holds CORS and rate-limit settings.
type SecurityConfig struct {
	CORSOrigins      []string      `koanf:"cors_origins"`
	RateLimit        int           `koanf:"rate_limit"`
	RateLimitWindow  time.Duration `koanf:"rate_limit_window"`
	QueryRateLimit   int           `koanf:"query_rate_limit"`
	EnableRateLimits bool          `koanf:"enable_rate_limits"`
}

// LoggingConfig mirrors logging.Config for the config file.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DefaultConfig returns the baseline configuration before file and
// environment layers are applied.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Catalog: CatalogConfig{
			Path:             "data/catalog.csv",
			FeaturesPath:     "data/features.json",
			MaxSearchResults: 25,
		},
		Engine: EngineConfig{
			DefaultCount: 6,
			MaxCount:     50,
		},
		Cache: CacheConfig{
			Capacity: 200,
			TTL:      0, // no expiry; LRU eviction only
		},
		Session: SessionConfig{
			TTL:         2 * time.Hour,
			MaxSessions: 10000,
		},
		Thumbnail: ThumbnailConfig{
			Enabled:      false,
			ProbeTimeout: 2 * time.Second,
			BaseURL:      "https://cdn.akamai.steamstatic.com/steam/apps",
			Placeholder:  "/static/placeholder.jpg",
		},
		Security: SecurityConfig{
			CORSOrigins:      []string{"*"},
			RateLimit:        100,
			RateLimitWindow:  time.Minute,
			QueryRateLimit:   30,
			EnableRateLimits: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the resolved configuration for values the service
// cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required")
	}
	if c.Catalog.FeaturesPath == "" {
		return fmt.Errorf("catalog.features_path is required")
	}
	if c.Catalog.MaxSearchResults < 1 {
		return fmt.Errorf("catalog.max_search_results must be positive, got %d", c.Catalog.MaxSearchResults)
	}
	if c.Engine.DefaultCount < 1 {
		return fmt.Errorf("engine.default_count must be positive, got %d", c.Engine.DefaultCount)
	}
	if c.Engine.MaxCount < c.Engine.DefaultCount {
		return fmt.Errorf("engine.max_count (%d) must be >= engine.default_count (%d)",
			c.Engine.MaxCount, c.Engine.DefaultCount)
	}
	if c.Cache.Capacity < 1 {
		return fmt.Errorf("cache.capacity must be positive, got %d", c.Cache.Capacity)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("session.max_sessions must be positive, got %d", c.Session.MaxSessions)
	}
	if c.Thumbnail.Enabled && c.Thumbnail.ProbeTimeout <= 0 {
		return fmt.Errorf("thumbnail.probe_timeout must be positive when probing is enabled, got %s",
			c.Thumbnail.ProbeTimeout)
	}
	if c.Thumbnail.BaseURL == "" {
		return fmt.Errorf("thumbnail.base_url is required")
	}
	if c.Security.EnableRateLimits {
		if c.Security.RateLimit < 1 {
			return fmt.Errorf("security.rate_limit must be positive, got %d", c.Security.RateLimit)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
