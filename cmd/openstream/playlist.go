// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openstream/openstream/internal/library"
	"github.com/openstream/openstream/pkg/types"
)

var playlistCmd = &cobra.Command{
	Use:   "playlist",
	Short: "Manage playlists in the local library",
	Long: `Playlist manages the local SQLite library. Use subcommands to create,
list, inspect, and delete playlists, add or remove tracks, and export
the whole library to YAML.`,
}

// --- create subcommand ---

var playlistCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new empty playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistCreate,
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	description, _ := cmd.Flags().GetString("description")
	playlist, err := store.CreatePlaylist(context.Background(), args[0], description)
	if err != nil {
		return err
	}
	fmt.Printf("created playlist %s (%s)\n", playlist.Name, playlist.ID)
	return nil
}

// --- list subcommand ---

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all playlists",
	RunE:  runPlaylistList,
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	playlists, err := store.ListPlaylists(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(playlists)
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-6s  %s\n", "ID", "Name", "Tracks", "Updated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 95))
	for _, p := range playlists {
		name := p.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-6d  %s\n",
			p.ID, name, p.TrackCount, p.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// --- show subcommand ---

var playlistShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a playlist with its tracks",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistShow,
}

func runPlaylistShow(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	playlist, err := store.GetPlaylist(context.Background(), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(playlist)
	}

	fmt.Printf("%s (%d tracks)\n", playlist.Name, playlist.TrackCount)
	if playlist.Description != "" {
		fmt.Println(playlist.Description)
	}
	fmt.Println()
	for i, t := range playlist.Tracks {
		fmt.Fprintf(os.Stdout, "%3d  %-45s  %-25s  %s\n", i+1, t.Title, t.Creator, t.Duration)
	}
	return nil
}

// --- delete subcommand ---

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistDelete,
}

func runPlaylistDelete(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeletePlaylist(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted playlist %s\n", args[0])
	return nil
}

// --- add subcommand ---

var playlistAddCmd = &cobra.Command{
	Use:   "add [playlist-id] [track-identifier]",
	Short: "Add a track to a playlist",
	Long: `Add appends a track to a playlist. The track identifier has the form
"<item>/<filename>" as printed by the album command. Title and stream
URL can be supplied with flags; the stream URL defaults to the archive
download location for the identifier.`,
	Args: cobra.ExactArgs(2),
	RunE: runPlaylistAdd,
}

func runPlaylistAdd(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	identifier := args[1]
	title, _ := cmd.Flags().GetString("title")
	if title == "" {
		title = identifier
	}
	streamURL, _ := cmd.Flags().GetString("stream-url")
	if streamURL == "" {
		if item, file, ok := strings.Cut(identifier, "/"); ok {
			streamURL = "https://archive.org/download/" + item + "/" + file
		}
	}

	track := types.Track{
		Identifier: identifier,
		Title:      title,
		StreamURL:  streamURL,
	}
	if err := store.AddTrack(context.Background(), args[0], track); err != nil {
		return err
	}
	fmt.Printf("added %s to playlist %s\n", identifier, args[0])
	return nil
}

// --- remove subcommand ---

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove [playlist-id] [track-identifier]",
	Short: "Remove a track from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaylistRemove,
}

func runPlaylistRemove(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RemoveTrack(context.Background(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("removed %s from playlist %s\n", args[1], args[0])
	return nil
}

// --- export subcommand ---

var playlistExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library (playlists and favorites) to YAML",
	RunE:  runPlaylistExport,
}

func runPlaylistExport(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	out, _ := cmd.Flags().GetString("out")
	if out == "" || out == "-" {
		return store.ExportYAML(context.Background(), os.Stdout)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := store.ExportYAML(context.Background(), f); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", out)
	return nil
}

func init() {
	playlistCreateCmd.Flags().String("description", "", "playlist description")
	playlistListCmd.Flags().Bool("json", false, "output playlists as JSON")
	playlistShowCmd.Flags().Bool("json", false, "output the playlist as JSON")
	playlistAddCmd.Flags().String("title", "", "track title (defaults to the identifier)")
	playlistAddCmd.Flags().String("stream-url", "", "stream URL (defaults to the archive download URL)")
	playlistExportCmd.Flags().String("out", "", "output file (default: stdout)")

	playlistCmd.AddCommand(playlistCreateCmd)
	playlistCmd.AddCommand(playlistListCmd)
	playlistCmd.AddCommand(playlistShowCmd)
	playlistCmd.AddCommand(playlistDeleteCmd)
	playlistCmd.AddCommand(playlistAddCmd)
	playlistCmd.AddCommand(playlistRemoveCmd)
	playlistCmd.AddCommand(playlistExportCmd)

	rootCmd.AddCommand(playlistCmd)
}
