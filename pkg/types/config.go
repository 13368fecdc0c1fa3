// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that call upstream
// catalogs.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with upstream requests.
	// MusicBrainz rejects requests without an identifying User-Agent.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageRows is the default page size returned to callers (default 10).
	PageRows int `json:"page_rows" yaml:"page_rows"`

	// FetchRows caps the raw candidate window fetched from each upstream
	// before grouping (default 150). The duplicate grouping pass is
	// quadratic, so this cap bounds its cost.
	FetchRows int `json:"fetch_rows" yaml:"fetch_rows"`

	// EnableMusicBrainz controls whether the MusicBrainz backend is used
	// alongside the archive backend.
	EnableMusicBrainz bool `json:"enable_musicbrainz" yaml:"enable_musicbrainz"`
}

// CacheConfig holds per-namespace TTLs and the sweep interval for the
// in-memory response cache.
type CacheConfig struct {
	// SearchTTL bounds cached search pages (default 1h).
	SearchTTL time.Duration `json:"search_ttl" yaml:"search_ttl"`

	// AlbumTTL bounds cached album detail responses (default 24h).
	AlbumTTL time.Duration `json:"album_ttl" yaml:"album_ttl"`

	// SweepInterval is how often the background sweep evicts expired
	// entries (default 1h).
	SweepInterval time.Duration `json:"sweep_interval" yaml:"sweep_interval"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":3001").
	Addr string `json:"addr" yaml:"addr"`
}

// LibraryConfig holds settings for the playlist/favorites store.
type LibraryConfig struct {
	// DatabasePath is the SQLite database file (default
	// "library/openstream.db"). The parent directory is created on open.
	DatabasePath string `json:"database_path" yaml:"database_path"`
}

// Config groups all stage configurations.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Search  SearchConfig  `json:"search" yaml:"search"`
	Cache   CacheConfig   `json:"cache" yaml:"cache"`
	Library LibraryConfig `json:"library" yaml:"library"`
}
