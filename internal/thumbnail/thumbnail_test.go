// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package thumbnail

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHeaderURL(t *testing.T) {
	got := HeaderURL(DefaultBaseURL, 620)
	want := "https://cdn.akamai.steamstatic.com/steam/apps/620/header.jpg"
	if got != want {
		t.Errorf("HeaderURL = %q, want %q", got, want)
	}

	// Trailing slash on the base must not double up.
	if got := HeaderURL("http://cdn.test/", 7); got != "http://cdn.test/7/header.jpg" {
		t.Errorf("HeaderURL with trailing slash = %q", got)
	}
}

func TestStaticResolve(t *testing.T) {
	s := Static{}
	if got := s.Resolve(context.Background(), 620); !strings.Contains(got, "/620/header.jpg") {
		t.Errorf("unexpected URL %q", got)
	}
}

func TestProberSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewProber(ProberConfig{
		BaseURL:     srv.URL,
		Placeholder: "/static/placeholder.jpg",
		Client:      srv.Client(),
	})

	got := p.Resolve(context.Background(), 42)
	if got != srv.URL+"/42/header.jpg" {
		t.Errorf("Resolve = %q, want probe URL", got)
	}
}

func TestProberFailureDegradesToPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewProber(ProberConfig{
		BaseURL:     srv.URL,
		Placeholder: "/static/placeholder.jpg",
		Client:      srv.Client(),
	})

	if got := p.Resolve(context.Background(), 42); got != "/static/placeholder.jpg" {
		t.Errorf("Resolve = %q, want placeholder", got)
	}
}

func TestProberBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var probes int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		probes++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewProber(ProberConfig{
		BaseURL:     srv.URL,
		Placeholder: "/ph.jpg",
		Client:      srv.Client(),
		Timeout:     time.Second,
	})

	for range 10 {
		if got := p.Resolve(context.Background(), 1); got != "/ph.jpg" {
			t.Fatalf("Resolve = %q, want placeholder", got)
		}
	}

	// After five consecutive failures the breaker is open and later
	// calls never reach the server.
	if probes > 5 {
		t.Errorf("breaker should have stopped probing, server saw %d requests", probes)
	}
}

func TestProberUnreachableServer(t *testing.T) {
	p := NewProber(ProberConfig{
		BaseURL:     "http://127.0.0.1:1", // nothing listens here
		Placeholder: "/ph.jpg",
		Timeout:     200 * time.Millisecond,
	})

	if got := p.Resolve(context.Background(), 1); got != "/ph.jpg" {
		t.Errorf("Resolve = %q, want placeholder", got)
	}
}
