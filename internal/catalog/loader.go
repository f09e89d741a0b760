// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/steamlens/steamlens/internal/logging"
)

// LoadCSV reads the catalog artifact through DuckDB's CSV reader and
// returns an immutable Store. DuckDB gives header validation and typed
// scans; a missing file, a missing column, or an empty table is an
// error the caller must treat as fatal.
func LoadCSV(ctx context.Context, path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("catalog artifact: %w", err)
	}

	conn, err := sql.Open("duckdb", ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false")
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Closing catalog loader connection")
		}
	}()

	// Column selection doubles as schema validation: DuckDB errors out
	// if any required column is absent from the header.
	rows, err := conn.QueryContext(ctx, `
		SELECT
			CAST(app_id AS BIGINT),
			CAST(title AS VARCHAR),
			CAST(rating AS VARCHAR),
			CAST(price_final AS DOUBLE),
			CAST(positive_ratio AS INTEGER),
			win, mac, linux
		FROM read_csv(?, header=true)
	`, path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog csv %s: %w", path, err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			it               Item
			rating           sql.NullString
			price            sql.NullFloat64
			ratio            sql.NullInt64
			win, mac, linuxF sql.NullBool
		)
		if err := rows.Scan(&it.AppID, &it.Title, &rating, &price, &ratio, &win, &mac, &linuxF); err != nil {
			return nil, fmt.Errorf("scanning catalog row %d: %w", len(items), err)
		}
		it.Rating = rating.String
		it.Price = price.Float64
		it.PositiveRatio = int(ratio.Int64)

		// NULL platform flags stay out of the map so Supports treats
		// them as unknown-therefore-supported.
		it.Platforms = make(Platforms, 3)
		if win.Valid {
			it.Platforms["win"] = win.Bool
		}
		if mac.Valid {
			it.Platforms["mac"] = mac.Bool
		}
		if linuxF.Valid {
			it.Platforms["linux"] = linuxF.Bool
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating catalog rows: %w", err)
	}

	store, err := NewStore(items)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	logging.Info().Int("items", store.Len()).Str("path", path).Msg("Catalog loaded")
	return store, nil
}
