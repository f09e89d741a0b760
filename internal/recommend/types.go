// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package recommend implements catalog scoring and filtered selection.
//
// Scoring is content-based: the library's rows are averaged into a
// centroid over the TF-IDF feature space, every catalog row is scored
// by cosine similarity against that centroid, and library rows are
// forced to a sentinel so they can never rank. Selection walks the
// ranked order applying conjunctive filters until enough items are
// accepted.
package recommend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/steamlens/steamlens/internal/catalog"
)

// sentinelScore marks rows belonging to the library itself. It sorts
// below every real cosine score (cosine over non-negative TF-IDF
// weights is in [0, 1]).
const sentinelScore = -1.0

// Filters are the conjunctive acceptance criteria applied in ranked
// order. Zero values disable a criterion: empty Platform skips the
// platform check, negative MaxPrice skips the budget check, and a
// non-positive MinRatio accepts every ratio.
type Filters struct {
	Platform string  `json:"platform"`
	MaxPrice float64 `json:"max_price"`
	MinRatio int     `json:"min_ratio"`
}

// Match reports whether the item passes every enabled criterion.
func (f Filters) Match(it catalog.Item) bool {
	if f.Platform != "" && !it.Platforms.Supports(f.Platform) {
		return false
	}
	if f.MaxPrice >= 0 && it.Price > f.MaxPrice {
		return false
	}
	if it.PositiveRatio < f.MinRatio {
		return false
	}
	return true
}

// Request is one recommendation query.
type Request struct {
	Library []string
	Filters Filters
	Count   int
}

// Fingerprint returns a stable cache key for the request. The library
// portion is deduplicated but order-preserving, matching the library
// semantics (insertion-ordered set).
func (r Request) Fingerprint() string {
	var b strings.Builder
	seen := make(map[string]struct{}, len(r.Library))
	for _, title := range r.Library {
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		b.WriteString(title)
		b.WriteByte(0x1f)
	}
	// The budget is serialized exactly: rounding here would let two
	// different filter tuples share one cache entry.
	fmt.Fprintf(&b, "|%s|%s|%d|%d",
		r.Filters.Platform,
		strconv.FormatFloat(r.Filters.MaxPrice, 'g', -1, 64),
		r.Filters.MinRatio,
		r.Count)
	return b.String()
}

// RankedEntry is one row of the ranked list.
type RankedEntry struct {
	Index int
	Score float64
}

// Ranking is the full scored ordering for one library, before filters.
type Ranking struct {
	// Entries is every catalog row ordered by score descending, row
	// index ascending. Empty when no library title resolved.
	Entries []RankedEntry

	// Resolved holds the catalog row indices of the library titles
	// that were found, deduplicated, in library order.
	Resolved []int

	// Unresolved counts library titles not present in the catalog.
	Unresolved int
}

// ScoredItem is one accepted recommendation.
type ScoredItem struct {
	catalog.Item
	Score     float64 `json:"score"`
	Thumbnail string  `json:"thumbnail,omitempty"`
}

// Result is the outcome of a full recommendation query.
type Result struct {
	Items      []ScoredItem `json:"items"`
	Unresolved int          `json:"unresolved"`
}
