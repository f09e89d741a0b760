// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package metrics exposes Prometheus instrumentation for:
//   - Recommendation query latency and outcomes
//   - Result cache efficiency
//   - Catalog and session gauges
//   - API endpoint latency and throughput
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Engine Metrics
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_queries_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"outcome"}, // "results", "empty", "empty_library", "error"
	)

	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Recommendation query duration in seconds, cache misses only",
			Buckets: prometheus.DefBuckets,
		},
	)

	UnresolvedTitles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_unresolved_titles_total",
			Help: "Total number of library titles not found in the catalog",
		},
	)

	// Result Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_hits_total",
			Help: "Total number of result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "result_cache_misses_total",
			Help: "Total number of result cache misses",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "result_cache_entries",
			Help: "Current number of cached recommendation results",
		},
	)

	// Catalog and Session Gauges
	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_items",
			Help: "Number of items in the loaded catalog",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "library_active_sessions",
			Help: "Current number of live session libraries",
		},
	)

	// Thumbnail Probe Metrics
	ThumbnailFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "thumbnail_fallbacks_total",
			Help: "Total number of thumbnail probes degraded to the placeholder",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordQuery records one recommendation query with its outcome label.
// Duration is only observed for queries that actually ran the engine;
// pass zero for cache hits.
func RecordQuery(outcome string, duration time.Duration) {
	QueriesTotal.WithLabelValues(outcome).Inc()
	if duration > 0 {
		QueryDuration.Observe(duration.Seconds())
	}
}

// RecordAPIRequest records metrics for an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
