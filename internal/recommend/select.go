// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package recommend

// Select walks the ranked list in order, accepting rows that pass every
// filter and are not in the exclude list, until n rows are accepted or
// the list is exhausted. Fewer than n accepted rows is a normal
// outcome.
//
// Exclusion is by title, not row index: a duplicate-titled row shares
// its title with a library entry and must not surface either.
func (e *Engine) Select(ranking Ranking, filters Filters, exclude []string, n int) []ScoredItem {
	if n <= 0 || len(ranking.Entries) == 0 {
		return []ScoredItem{}
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, title := range exclude {
		excluded[title] = struct{}{}
	}

	out := make([]ScoredItem, 0, n)
	for _, entry := range ranking.Entries {
		if entry.Score == sentinelScore {
			continue
		}
		item := e.store.Item(entry.Index)
		if _, skip := excluded[item.Title]; skip {
			continue
		}
		if !filters.Match(item) {
			continue
		}
		out = append(out, ScoredItem{Item: item, Score: entry.Score})
		if len(out) == n {
			break
		}
	}
	return out
}
