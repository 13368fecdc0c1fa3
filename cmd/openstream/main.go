// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the openstream CLI.
// Implements: prd001-search, prd002-catalog, prd003-library (CLI surface);
//
//	docs/ARCHITECTURE § Command Interface.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the openstream CLI.
var rootCmd = &cobra.Command{
	Use:   "openstream",
	Short: "Music discovery and playback backend for open audio archives",
	Long: `openstream searches open audio archives (archive.org, MusicBrainz) for
music, resolves items into playable track lists, and manages a local
library of playlists and favorites.

Run "openstream serve" to expose the HTTP API, or use the search, album,
playlist, and favorite subcommands directly from the shell.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./openstream.yaml or ~/.config/openstream/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("openstream")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "openstream"))
		}
	}

	viper.SetEnvPrefix("OPENSTREAM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
