// SteamLens - Catalog Discovery and Recommendation Engine
// Copyright 2026 SteamLens contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/steamlens/steamlens

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "STEAMLENS_"

// Load resolves the configuration from defaults, an optional YAML file,
// and STEAMLENS_-prefixed environment variables, in that order.
//
// The file path is taken from STEAMLENS_CONFIG if set, falling back to
// config.yaml in the working directory. A missing file is not an error;
// a file that exists but fails to parse is.
func Load() (*Config, error) {
	path := os.Getenv("STEAMLENS_CONFIG")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit file path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// STEAMLENS_SERVER_PORT -> server.port
	// STEAMLENS_CATALOG_MAX_SEARCH_RESULTS -> catalog.max_search_results
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// envTransform maps an environment variable name to a koanf key. Only
// the first underscore becomes a section separator; the rest stay as
// part of the key name.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if s == "config" {
		return "" // STEAMLENS_CONFIG selects the file, it is not a key
	}
	return strings.Replace(s, "_", ".", 1)
}
