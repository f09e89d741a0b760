// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

// Package catalog holds the immutable game catalog loaded once at
// startup. Row order is significant: the feature matrix in
// internal/features is aligned row-for-row with the store.
package catalog

// Platforms records per-platform support flags. A platform absent from
// the map is treated as supported: catalog exports sometimes lack a
// column for newer platforms, and an unknown flag must not hide an item
// from filtered queries.
type Platforms map[string]bool

// Supports reports whether the item runs on the named platform.
func (p Platforms) Supports(platform string) bool {
	v, ok := p[platform]
	if !ok {
		return true
	}
	return v
}

// Item is one catalog row.
type Item struct {
	AppID         int64     `json:"app_id"`
	Title         string    `json:"title"`
	Rating        string    `json:"rating"`
	Price         float64   `json:"price"`
	PositiveRatio int       `json:"positive_ratio"`
	Platforms     Platforms `json:"platforms"`
}
