// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package catalog

import (
	"errors"
	"strings"
)

// ErrEmptyCatalog is returned when a store would contain zero items.
var ErrEmptyCatalog = errors.New("catalog: no items")

// Store is the immutable catalog. It is safe for concurrent use without
// locking because nothing mutates it after construction.
type Store struct {
	items   []Item
	byTitle map[string]int // exact title -> first row index in table order
}

// NewStore builds a store over the given rows. Rows are kept in the
// given order; duplicate titles resolve to the first occurrence.
func NewStore(items []Item) (*Store, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCatalog
	}
	byTitle := make(map[string]int, len(items))
	for i, it := range items {
		if _, ok := byTitle[it.Title]; !ok {
			byTitle[it.Title] = i
		}
	}
	return &Store{items: items, byTitle: byTitle}, nil
}

// Len returns the number of catalog rows.
func (s *Store) Len() int {
	return len(s.items)
}

// Item returns the row at index i.
func (s *Store) Item(i int) Item {
	return s.items[i]
}

// Lookup returns the first row index whose title matches exactly.
func (s *Store) Lookup(title string) (int, bool) {
	i, ok := s.byTitle[title]
	return i, ok
}

// Search returns up to limit items whose title contains the query,
// case-insensitively, in table order. An empty query matches nothing.
func (s *Store) Search(query string, limit int) []Item {
	if query == "" || limit <= 0 {
		return nil
	}
	q := strings.ToLower(query)
	var out []Item
	for _, it := range s.items {
		if strings.Contains(strings.ToLower(it.Title), q) {
			out = append(out, it)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Stats summarizes the catalog for the stats endpoint.
type Stats struct {
	Items     int     `json:"items"`
	FreeShare float64 `json:"free_share"`
	AvgRatio  float64 `json:"avg_positive_ratio"`
}

// Stats computes catalog-wide summary figures.
func (s *Store) Stats() Stats {
	free := 0
	ratioSum := 0
	for _, it := range s.items {
		if it.Price == 0 {
			free++
		}
		ratioSum += it.PositiveRatio
	}
	n := len(s.items)
	return Stats{
		Items:     n,
		FreeShare: float64(free) / float64(n),
		AvgRatio:  float64(ratioSum) / float64(n),
	}
}
