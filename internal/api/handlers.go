// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/steamlens/steamlens/internal/cache"
	"github.com/steamlens/steamlens/internal/catalog"
	"github.com/steamlens/steamlens/internal/config"
	"github.com/steamlens/steamlens/internal/library"
	"github.com/steamlens/steamlens/internal/metrics"
	"github.com/steamlens/steamlens/internal/recommend"
	"github.com/steamlens/steamlens/internal/thumbnail"
)

// sessionHeader carries the client's session identity for library
// endpoints. There is no authentication: a session is whatever the
// client says it is, scoped to this process's lifetime.
const sessionHeader = "X-Session-ID"

// Handler bundles the service dependencies behind the HTTP surface.
type Handler struct {
	store     *catalog.Store
	engine    *recommend.Engine
	results   *cache.ResultCache
	libraries *library.Store
	thumbs    thumbnail.Resolver
	cfg       *config.Config
	validate  *validator.Validate
}

// NewHandler wires the handler. All dependencies are required except
// thumbs, which falls back to plain URL derivation.
func NewHandler(
	store *catalog.Store,
	engine *recommend.Engine,
	results *cache.ResultCache,
	libraries *library.Store,
	thumbs thumbnail.Resolver,
	cfg *config.Config,
) *Handler {
	if thumbs == nil {
		thumbs = thumbnail.Static{BaseURL: cfg.Thumbnail.BaseURL}
	}
	return &Handler{
		store:     store,
		engine:    engine,
		results:   results,
		libraries: libraries,
		thumbs:    thumbs,
		cfg:       cfg,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Health reports liveness plus basic component figures.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"catalog_items": h.store.Len(),
		"cache":         h.results.Stats(),
	})
}

// HealthLive is the liveness probe.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady is the readiness probe. The catalog is loaded before the
// server starts, so reachability implies readiness.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// CatalogStats serves catalog-wide summary figures.
func (h *Handler) CatalogStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Stats())
}

// searchResponse is the search endpoint body.
type searchResponse struct {
	Items []catalog.Item `json:"items"`
	Query string         `json:"query"`
}

// Search serves case-insensitive substring title search. The limit
// parameter defaults to 5 and is clamped to the configured maximum.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	if limit > h.cfg.Catalog.MaxSearchResults {
		limit = h.cfg.Catalog.MaxSearchResults
	}

	items := h.store.Search(q, limit)
	if items == nil {
		items = []catalog.Item{}
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Query: q})
}

// libraryResponse is the library endpoints' body.
type libraryResponse struct {
	Titles []string `json:"titles"`
}

// sessionID extracts the session header, writing a 400 when absent.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get(sessionHeader)
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing "+sessionHeader+" header")
		return "", false
	}
	return id, true
}

// GetLibrary returns the session's library in insertion order.
func (h *Handler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, libraryResponse{Titles: h.libraries.Titles(id)})
}

// addLibraryRequest is the add-item body.
type addLibraryRequest struct {
	Title string `json:"title" validate:"required,max=512"`
}

// AddLibraryItem appends a title to the session library. The title must
// exist in the catalog; adding an unknown title is a client error
// rather than a silently unresolvable library entry.
func (h *Handler) AddLibraryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req addLibraryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if _, found := h.store.Lookup(req.Title); !found {
		writeError(w, http.StatusNotFound, "title not in catalog")
		return
	}

	if _, err := h.libraries.Add(id, req.Title); err != nil {
		if errors.Is(err, library.ErrTooManySessions) {
			writeError(w, http.StatusServiceUnavailable, "session limit reached")
			return
		}
		writeError(w, http.StatusInternalServerError, "adding title")
		return
	}
	metrics.ActiveSessions.Set(float64(h.libraries.Len()))
	writeJSON(w, http.StatusOK, libraryResponse{Titles: h.libraries.Titles(id)})
}

// RemoveLibraryItem drops one title from the session library.
func (h *Handler) RemoveLibraryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil || title == "" {
		writeError(w, http.StatusBadRequest, "invalid title")
		return
	}
	if !h.libraries.Remove(id, title) {
		writeError(w, http.StatusNotFound, "title not in library")
		return
	}
	writeJSON(w, http.StatusOK, libraryResponse{Titles: h.libraries.Titles(id)})
}

// ClearLibrary empties the session library.
func (h *Handler) ClearLibrary(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	h.libraries.Clear(id)
	writeJSON(w, http.StatusOK, libraryResponse{Titles: []string{}})
}
