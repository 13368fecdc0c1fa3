// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/openstream/openstream/pkg/types"
)

// loadConfig resolves the full configuration from viper: config file
// values override these defaults, environment variables (OPENSTREAM_*)
// override both.
func loadConfig() types.Config {
	viper.SetDefault("server.addr", ":3001")

	viper.SetDefault("search.timeout", 15*time.Second)
	viper.SetDefault("search.user_agent", "openstream/0.1 (+https://github.com/openstream/openstream)")
	viper.SetDefault("search.page_rows", 10)
	viper.SetDefault("search.fetch_rows", 150)
	viper.SetDefault("search.enable_musicbrainz", true)

	viper.SetDefault("cache.search_ttl", time.Hour)
	viper.SetDefault("cache.album_ttl", 24*time.Hour)
	viper.SetDefault("cache.sweep_interval", time.Hour)

	viper.SetDefault("library.database_path", "library/openstream.db")

	return types.Config{
		Server: types.ServerConfig{
			Addr: viper.GetString("server.addr"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			PageRows:          viper.GetInt("search.page_rows"),
			FetchRows:         viper.GetInt("search.fetch_rows"),
			EnableMusicBrainz: viper.GetBool("search.enable_musicbrainz"),
		},
		Cache: types.CacheConfig{
			SearchTTL:     viper.GetDuration("cache.search_ttl"),
			AlbumTTL:      viper.GetDuration("cache.album_ttl"),
			SweepInterval: viper.GetDuration("cache.sweep_interval"),
		},
		Library: types.LibraryConfig{
			DatabasePath: viper.GetString("library.database_path"),
		},
	}
}
