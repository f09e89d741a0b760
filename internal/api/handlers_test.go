// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/steamlens/steamlens/internal/cache"
	"github.com/steamlens/steamlens/internal/catalog"
	"github.com/steamlens/steamlens/internal/config"
	"github.com/steamlens/steamlens/internal/features"
	"github.com/steamlens/steamlens/internal/library"
	"github.com/steamlens/steamlens/internal/metrics"
	"github.com/steamlens/steamlens/internal/recommend"
)

// newTestRouter wires the full stack over the canonical three-item
// catalog: A free/loved/win, B pricey/panned/win, C mid/linux.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store, err := catalog.NewStore([]catalog.Item{
		{AppID: 1, Title: "A", Price: 0, PositiveRatio: 90, Platforms: catalog.Platforms{"win": true, "mac": false, "linux": false}},
		{AppID: 2, Title: "B", Price: 20, PositiveRatio: 40, Platforms: catalog.Platforms{"win": true, "mac": false, "linux": false}},
		{AppID: 3, Title: "C", Price: 10, PositiveRatio: 70, Platforms: catalog.Platforms{"win": false, "mac": false, "linux": true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	matrix, err := features.FromDense([][]float64{
		{1, 0},
		{0.9, 0.1},
		{0.5, 0.5},
	})
	if err != nil {
		t.Fatal(err)
	}
	engine, err := recommend.NewEngine(store, matrix, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Security.EnableRateLimits = false

	h := NewHandler(
		store,
		engine,
		cache.NewResultCache(cfg.Cache.Capacity, cfg.Cache.TTL),
		library.NewStore(cfg.Session.TTL, cfg.Session.MaxSessions),
		nil,
		cfg,
	)
	return NewRouter(h, NewMiddleware(&MiddlewareConfig{
		CORSAllowedOrigins: []string{"*"},
		RateLimitDisabled:  true,
	}))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/live", "/api/v1/health/ready"} {
		rec := doJSON(t, router, http.MethodGet, path, nil, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s returned %d", path, rec.Code)
		}
	}
}

func TestCatalogStats(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/catalog/stats", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	stats := decode[catalog.Stats](t, rec)
	if stats.Items != 3 {
		t.Errorf("items = %d, want 3", stats.Items)
	}
}

func TestSearch(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/search?q=a", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[searchResponse](t, rec)
	if len(resp.Items) != 1 || resp.Items[0].Title != "A" {
		t.Errorf("unexpected search results %+v", resp.Items)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/search?q=zzz", nil, nil)
	resp = decode[searchResponse](t, rec)
	if rec.Code != http.StatusOK || len(resp.Items) != 0 {
		t.Errorf("no-hit search should be an empty 200, got %d %+v", rec.Code, resp.Items)
	}

	if rec := doJSON(t, router, http.MethodGet, "/api/v1/search", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing q should be 400, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/search?q=a&limit=banana", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("non-integer limit should be 400, got %d", rec.Code)
	}
}

func TestLibraryLifecycle(t *testing.T) {
	router := newTestRouter(t)
	sess := map[string]string{"X-Session-ID": "s1"}

	// Starts empty.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/library", nil, sess)
	if got := decode[libraryResponse](t, rec); len(got.Titles) != 0 {
		t.Errorf("new session library should be empty, got %v", got.Titles)
	}

	// Add A twice: second add is a no-op.
	for range 2 {
		rec = doJSON(t, router, http.MethodPost, "/api/v1/library/items", addLibraryRequest{Title: "A"}, sess)
		if rec.Code != http.StatusOK {
			t.Fatalf("add returned %d: %s", rec.Code, rec.Body.String())
		}
	}
	rec = doJSON(t, router, http.MethodGet, "/api/v1/library", nil, sess)
	if got := decode[libraryResponse](t, rec); len(got.Titles) != 1 || got.Titles[0] != "A" {
		t.Errorf("library = %v, want [A]", got.Titles)
	}

	// Sessions are isolated.
	rec = doJSON(t, router, http.MethodGet, "/api/v1/library", nil, map[string]string{"X-Session-ID": "s2"})
	if got := decode[libraryResponse](t, rec); len(got.Titles) != 0 {
		t.Errorf("other session should be empty, got %v", got.Titles)
	}

	// Remove, then clear.
	if rec := doJSON(t, router, http.MethodDelete, "/api/v1/library/items/A", nil, sess); rec.Code != http.StatusOK {
		t.Errorf("remove returned %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodDelete, "/api/v1/library/items/A", nil, sess); rec.Code != http.StatusNotFound {
		t.Errorf("removing absent title should be 404, got %d", rec.Code)
	}
	if rec := doJSON(t, router, http.MethodDelete, "/api/v1/library", nil, sess); rec.Code != http.StatusOK {
		t.Errorf("clear returned %d", rec.Code)
	}
}

func TestLibraryRequiresSessionHeader(t *testing.T) {
	router := newTestRouter(t)
	if rec := doJSON(t, router, http.MethodGet, "/api/v1/library", nil, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("missing session header should be 400, got %d", rec.Code)
	}
}

func TestAddUnknownTitleIs404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/v1/library/items",
		addLibraryRequest{Title: "Not In Catalog"}, map[string]string{"X-Session-ID": "s1"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown title should be 404, got %d", rec.Code)
	}
}

func TestRecommendationsValidation(t *testing.T) {
	router := newTestRouter(t)

	bad := []recommendRequest{
		{Library: []string{"A"}, Platform: "amiga"},
		{Library: []string{"A"}, MinRatio: 101},
		{Library: []string{"A"}, MinRatio: -1},
		{Library: []string{"A"}, Count: 51},
	}
	for i, req := range bad {
		rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", req, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d: %s", i, rec.Code, rec.Body.String())
		}
	}

	negPrice := -5.0
	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations",
		recommendRequest{Library: []string{"A"}, MaxPrice: &negPrice}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("negative max_price should be 400, got %d", rec.Code)
	}
}

func TestRecommendationsEmptyLibrary(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations",
		recommendRequest{Library: []string{}}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("empty library should be 200, got %d", rec.Code)
	}
	resp := decode[recommendResponse](t, rec)
	if len(resp.Items) != 0 || resp.Reason != reasonEmptyLibrary {
		t.Errorf("expected empty_library outcome, got %+v", resp)
	}
}

func TestRecommendationsFilteredToEmpty(t *testing.T) {
	router := newTestRouter(t)

	price := 15.0
	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations",
		recommendRequest{Library: []string{"A"}, Platform: "win", MaxPrice: &price, MinRatio: 50}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[recommendResponse](t, rec)
	if len(resp.Items) != 0 || resp.Reason != reasonNoMatches {
		t.Errorf("expected no_matches outcome, got %+v", resp)
	}
}

func TestRecommendationsExplicitLibrary(t *testing.T) {
	router := newTestRouter(t)

	price := 100.0
	req := recommendRequest{Library: []string{"A", "Ghost"}, Platform: "win", MaxPrice: &price}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", req, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[recommendResponse](t, rec)
	if len(resp.Items) != 1 || resp.Items[0].Title != "B" {
		t.Fatalf("expected [B], got %+v", resp.Items)
	}
	if resp.Unresolved != 1 {
		t.Errorf("unresolved = %d, want 1", resp.Unresolved)
	}
	if resp.Cached {
		t.Error("first query should not be cached")
	}
	if resp.Items[0].Thumbnail == "" {
		t.Error("expected a thumbnail URL")
	}

	// Identical query hits the cache.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/recommendations", req, nil)
	resp = decode[recommendResponse](t, rec)
	if !resp.Cached {
		t.Error("second identical query should be served from cache")
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "B" {
		t.Errorf("cached result mismatch: %+v", resp.Items)
	}
}

func TestRecommendationsSessionLibrary(t *testing.T) {
	router := newTestRouter(t)
	sess := map[string]string{"X-Session-ID": "s1"}

	rec := doJSON(t, router, http.MethodPost, "/api/v1/library/items", addLibraryRequest{Title: "A"}, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("add returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/recommendations", recommendRequest{}, sess)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode[recommendResponse](t, rec)
	if len(resp.Items) != 2 {
		t.Fatalf("expected B and C, got %+v", resp.Items)
	}
	if resp.Items[0].Title != "B" || resp.Items[1].Title != "C" {
		t.Errorf("expected similarity order [B C], got %+v", resp.Items)
	}
	for _, item := range resp.Items {
		if item.Title == "A" {
			t.Fatal("library title surfaced in results")
		}
	}
}

func TestRecommendationsRefreshCacheSizeGauge(t *testing.T) {
	router := newTestRouter(t)

	price := 100.0
	req := recommendRequest{Library: []string{"A"}, Platform: "win", MaxPrice: &price}

	// Miss populates the cache; the hit must also refresh the gauge,
	// since a Get can drop an expired entry.
	for range 2 {
		if rec := doJSON(t, router, http.MethodPost, "/api/v1/recommendations", req, nil); rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if got := testutil.ToFloat64(metrics.CacheSize); got != 1 {
			t.Errorf("cache size gauge = %v, want 1", got)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("/metrics returned %d", rec.Code)
	}
}
