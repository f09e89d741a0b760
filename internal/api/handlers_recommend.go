// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/steamlens/steamlens/internal/logging"
	"github.com/steamlens/steamlens/internal/metrics"
	"github.com/steamlens/steamlens/internal/recommend"
)

// recommendRequest is the recommendation query body. A nil Library
// means "use the session library"; an explicit empty slice is an empty
// library. MaxPrice is a pointer so "no budget" and "budget 0" stay
// distinct.
type recommendRequest struct {
	Library  []string `json:"library"`
	Platform string   `json:"platform" validate:"omitempty,oneof=win mac linux"`
	MaxPrice *float64 `json:"max_price" validate:"omitempty,gte=0"`
	MinRatio int      `json:"min_ratio" validate:"gte=0,lte=100"`
	Count    int      `json:"count" validate:"gte=0"`
}

// recommendResponse adds outcome metadata to the engine result.
type recommendResponse struct {
	Items      []recommend.ScoredItem `json:"items"`
	Unresolved int                    `json:"unresolved"`
	Cached     bool                   `json:"cached"`
	Reason     string                 `json:"reason,omitempty"`
}

// Outcome reasons for empty result sets. Both are 200s: an empty
// outcome is an answer, not an error.
const (
	reasonEmptyLibrary = "empty_library"
	reasonNoMatches    = "no_matches"
)

// Recommendations runs a recommendation query: resolve the library,
// consult the result cache, score and select on a miss, then attach
// thumbnails.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid parameters: "+err.Error())
		return
	}
	if req.Count > h.cfg.Engine.MaxCount {
		writeError(w, http.StatusBadRequest, "count exceeds maximum")
		return
	}
	if req.Count == 0 {
		req.Count = h.cfg.Engine.DefaultCount
	}

	lib := req.Library
	if lib == nil {
		if id := r.Header.Get(sessionHeader); id != "" {
			lib = h.libraries.Titles(id)
		}
	}
	if len(lib) == 0 {
		metrics.RecordQuery("empty_library", 0)
		writeJSON(w, http.StatusOK, recommendResponse{
			Items:  []recommend.ScoredItem{},
			Reason: reasonEmptyLibrary,
		})
		return
	}

	maxPrice := -1.0 // no budget filter
	if req.MaxPrice != nil {
		maxPrice = *req.MaxPrice
	}
	engineReq := recommend.Request{
		Library: lib,
		Filters: recommend.Filters{
			Platform: req.Platform,
			MaxPrice: maxPrice,
			MinRatio: req.MinRatio,
		},
		Count: req.Count,
	}

	key := engineReq.Fingerprint()
	result, hit := h.results.Get(key)
	if hit {
		metrics.CacheHits.Inc()
		metrics.RecordQuery(outcome(result), 0)
	} else {
		metrics.CacheMisses.Inc()
		start := time.Now()
		var err error
		result, err = h.engine.Recommend(engineReq)
		if err != nil {
			logging.Err(err).Msg("Recommendation query failed")
			metrics.RecordQuery("error", 0)
			writeError(w, http.StatusInternalServerError, "scoring failed")
			return
		}
		h.results.Put(key, result)
		metrics.RecordQuery(outcome(result), time.Since(start))
	}
	// Refreshed on both paths: a Get can shrink the cache by dropping
	// an expired entry.
	metrics.CacheSize.Set(float64(h.results.Len()))
	metrics.UnresolvedTitles.Add(float64(result.Unresolved))

	// Thumbnails are attached after the cache so probe outcomes never
	// get frozen into cached entries.
	for i := range result.Items {
		result.Items[i].Thumbnail = h.thumbs.Resolve(r.Context(), result.Items[i].AppID)
	}

	resp := recommendResponse{
		Items:      result.Items,
		Unresolved: result.Unresolved,
		Cached:     hit,
	}
	if len(resp.Items) == 0 {
		resp.Items = []recommend.ScoredItem{}
		resp.Reason = reasonNoMatches
	}
	writeJSON(w, http.StatusOK, resp)
}

func outcome(r recommend.Result) string {
	if len(r.Items) == 0 {
		return "empty"
	}
	return "results"
}
