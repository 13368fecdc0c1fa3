// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/openstream/openstream/internal/search"
	"github.com/openstream/openstream/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search open audio archives for music",
	Long: `Search queries the enabled catalogs (archive.org, MusicBrainz) for a
free-text query. Results are deduplicated across near-identical releases
and ranked by relevance.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	start, _ := cmd.Flags().GetInt("start")
	rows, _ := cmd.Flags().GetInt("rows")

	client := &http.Client{Timeout: cfg.Search.Timeout}
	backends := []search.Backend{&search.ArchiveBackend{Client: client}}
	if cfg.Search.EnableMusicBrainz {
		backends = append(backends, search.NewMusicBrainzBackend(client))
	}
	aggregator := search.NewAggregator(backends, nil, cfg.Search, 0, log.New(io.Discard))

	page, err := aggregator.Search(context.Background(), strings.Join(args, " "), start, rows)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(page, jsonOutput)
}

func formatSearchOutput(page *types.SearchResultPage, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	if len(page.Docs) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-45s  %-25s  %-5s  %-6s  %s\n",
		"Rank", "Title", "Creator", "Year", "Score", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for i, doc := range page.Docs {
		title := doc.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		creator := doc.Creator
		if len(creator) > 25 {
			creator = creator[:22] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-45s  %-25s  %-5s  %-6d  %s\n",
			page.Start+i+1, title, creator, doc.Year, doc.Score, doc.Source)
	}

	fmt.Fprintf(os.Stdout, "\n%d of %d results (start=%d)\n", len(page.Docs), page.NumFound, page.Start)
	return nil
}

func init() {
	searchCmd.Flags().Int("start", 0, "offset of the first result")
	searchCmd.Flags().Int("rows", 0, "page size (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}
