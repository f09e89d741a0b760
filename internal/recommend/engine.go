// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/steamlens/steamlens/internal/catalog"
	"github.com/steamlens/steamlens/internal/features"
)

// Engine scores the catalog against a library. It holds only immutable
// state and is safe for concurrent use.
type Engine struct {
	store  *catalog.Store
	matrix *features.Matrix
	logger zerolog.Logger
}

// NewEngine wires the catalog and its feature matrix. The two artifacts
// must agree row-for-row; a mismatch means they were generated from
// different catalog exports and the service must not start.
func NewEngine(store *catalog.Store, matrix *features.Matrix, logger zerolog.Logger) (*Engine, error) {
	if store.Len() != matrix.Rows() {
		return nil, fmt.Errorf("recommend: catalog has %d rows but feature matrix has %d",
			store.Len(), matrix.Rows())
	}
	return &Engine{store: store, matrix: matrix, logger: logger}, nil
}

// Score resolves the library and ranks the whole catalog against it.
//
// Titles not found in the catalog are skipped and counted; an empty
// resolution produces an empty ranking rather than an error. Resolved
// rows are forced to the sentinel score so the library can never
// recommend itself. The ordering is a deterministic total order:
// score descending, catalog row index ascending.
func (e *Engine) Score(library []string) (Ranking, error) {
	var r Ranking
	seen := make(map[int]struct{}, len(library))
	for _, title := range library {
		idx, ok := e.store.Lookup(title)
		if !ok {
			r.Unresolved++
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		r.Resolved = append(r.Resolved, idx)
	}

	if len(r.Resolved) == 0 {
		e.logger.Debug().Int("unresolved", r.Unresolved).Msg("No library titles resolved")
		return r, nil
	}

	start := time.Now()
	centroid := e.matrix.Centroid(r.Resolved)
	scores, err := e.matrix.CosineAll(centroid)
	if err != nil {
		return Ranking{}, fmt.Errorf("scoring catalog: %w", err)
	}
	for _, idx := range r.Resolved {
		scores[idx] = sentinelScore
	}

	r.Entries = make([]RankedEntry, len(scores))
	for i, s := range scores {
		r.Entries[i] = RankedEntry{Index: i, Score: s}
	}
	sort.Slice(r.Entries, func(a, b int) bool {
		if r.Entries[a].Score != r.Entries[b].Score {
			return r.Entries[a].Score > r.Entries[b].Score
		}
		return r.Entries[a].Index < r.Entries[b].Index
	})

	e.logger.Debug().
		Int("library", len(r.Resolved)).
		Int("unresolved", r.Unresolved).
		Dur("elapsed", time.Since(start)).
		Msg("Catalog scored")
	return r, nil
}

// Recommend runs the full pipeline: score, then filtered selection.
func (e *Engine) Recommend(req Request) (Result, error) {
	ranking, err := e.Score(req.Library)
	if err != nil {
		return Result{}, err
	}
	items := e.Select(ranking, req.Filters, req.Library, req.Count)
	return Result{Items: items, Unresolved: ranking.Unresolved}, nil
}
