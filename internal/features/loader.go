// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package features

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/steamlens/steamlens/internal/logging"
)

// artifact is the on-disk JSON shape of the feature matrix:
//
//	{"rows": 3, "cols": 128, "entries": [[{"i": 4, "v": 0.3}, ...], ...]}
//
// entries holds one sparse row per catalog row, in catalog order.
type artifact struct {
	Rows    int       `json:"rows"`
	Cols    int       `json:"cols"`
	Entries [][]entry `json:"entries"`
}

type entry struct {
	I int     `json:"i"`
	V float64 `json:"v"`
}

// Load reads the feature matrix artifact. Any structural problem —
// unreadable file, malformed JSON, row-count disagreement inside the
// artifact, out-of-range indices — is an error the caller treats as
// fatal at startup.
func Load(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("feature artifact: %w", err)
	}

	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parsing feature artifact %s: %w", path, err)
	}
	if a.Rows != len(a.Entries) {
		return nil, fmt.Errorf("feature artifact %s: header says %d rows, found %d",
			path, a.Rows, len(a.Entries))
	}

	rows := make([]Vector, len(a.Entries))
	for r, es := range a.Entries {
		v := Vector{
			Indices: make([]int, len(es)),
			Values:  make([]float64, len(es)),
		}
		for k, e := range es {
			v.Indices[k] = e.I
			v.Values[k] = e.V
		}
		rows[r] = v
	}

	m, err := NewMatrix(rows, a.Cols)
	if err != nil {
		return nil, fmt.Errorf("feature artifact %s: %w", path, err)
	}
	logging.Info().
		Int("rows", m.Rows()).
		Int("cols", m.Cols()).
		Str("path", path).
		Msg("Feature matrix loaded")
	return m, nil
}
