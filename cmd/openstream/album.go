// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openstream/openstream/internal/catalog"
)

var albumCmd = &cobra.Command{
	Use:   "album [identifier]",
	Short: "Show the playable track list of an archive item",
	Long: `Album fetches the metadata of one archive.org item and prints its
playable tracks with stream URLs.`,
	Args: cobra.ExactArgs(1),
	RunE: runAlbum,
}

func runAlbum(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	client := &http.Client{Timeout: cfg.Search.Timeout}
	svc := catalog.NewService(client, nil, cfg.Search.HTTPConfig, 0, log.New(io.Discard))

	album, err := svc.AlbumDetail(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(album)
	}

	fmt.Fprintf(os.Stdout, "%s", album.Title)
	if album.Creator != "" {
		fmt.Fprintf(os.Stdout, " / %s", album.Creator)
	}
	if album.Year != "" {
		fmt.Fprintf(os.Stdout, " (%s)", album.Year)
	}
	fmt.Fprintln(os.Stdout)
	fmt.Fprintf(os.Stdout, "cover: %s\n\n", album.CoverURL)

	for _, t := range album.Tracks {
		num := " "
		if t.TrackNum > 0 {
			num = fmt.Sprintf("%d", t.TrackNum)
		}
		fmt.Fprintf(os.Stdout, "%3s  %-45s  %-8s  %s\n", num, t.Title, t.Duration, t.StreamURL)
	}
	fmt.Fprintf(os.Stdout, "\n%d tracks\n", len(album.Tracks))
	return nil
}

func init() {
	albumCmd.Flags().Bool("json", false, "output the album as JSON")

	rootCmd.AddCommand(albumCmd)
}
