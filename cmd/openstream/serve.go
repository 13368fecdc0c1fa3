// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openstream/openstream/internal/api"
	"github.com/openstream/openstream/internal/cache"
	"github.com/openstream/openstream/internal/catalog"
	"github.com/openstream/openstream/internal/library"
	"github.com/openstream/openstream/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes search, track detail, playlists, and favorites over HTTP.
Responses are cached in memory with per-namespace TTLs; the library is
persisted in SQLite.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "openstream",
	})
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(log.DebugLevel)
	}

	store := cache.New(cfg.Cache.SearchTTL, logger)
	store.StartSweeper(cfg.Cache.SweepInterval)
	defer store.Stop()

	client := &http.Client{Timeout: cfg.Search.Timeout}

	backends := []search.Backend{&search.ArchiveBackend{Client: client}}
	if cfg.Search.EnableMusicBrainz {
		backends = append(backends, search.NewMusicBrainzBackend(client))
	}
	aggregator := search.NewAggregator(backends, store, cfg.Search, cfg.Cache.SearchTTL, logger)
	catalogSvc := catalog.NewService(client, store, cfg.Search.HTTPConfig, cfg.Cache.AlbumTTL, logger)

	lib, err := library.NewStore(cfg.Library)
	if err != nil {
		return err
	}
	defer lib.Close()

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.NewServer(aggregator, catalogSvc, lib, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().Bool("verbose", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
}
