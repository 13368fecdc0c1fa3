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

var favoriteCmd = &cobra.Command{
	Use:   "favorite",
	Short: "Manage starred items in the local library",
}

var favoriteAddCmd = &cobra.Command{
	Use:   "add [identifier]",
	Short: "Star an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteAdd,
}

func runFavoriteAdd(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	title, _ := cmd.Flags().GetString("title")
	creator, _ := cmd.Flags().GetString("creator")
	fav := types.Favorite{
		Identifier: args[0],
		Title:      title,
		Creator:    creator,
	}
	if err := store.SetFavorite(context.Background(), fav); err != nil {
		return err
	}
	fmt.Printf("starred %s\n", args[0])
	return nil
}

var favoriteRemoveCmd = &cobra.Command{
	Use:   "remove [identifier]",
	Short: "Unstar an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoriteRemove,
}

func runFavoriteRemove(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Unfavorite(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("unstarred %s\n", args[0])
	return nil
}

var favoriteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List starred items, newest first",
	RunE:  runFavoriteList,
}

func runFavoriteList(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(loadConfig().Library)
	if err != nil {
		return err
	}
	defer store.Close()

	favorites, err := store.ListFavorites(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(favorites)
	}

	if len(favorites) == 0 {
		fmt.Println("No favorites.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-30s  %-40s  %-25s  %s\n", "Identifier", "Title", "Creator", "Added")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 105))
	for _, f := range favorites {
		title := f.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-30s  %-40s  %-25s  %s\n",
			f.Identifier, title, f.Creator, f.AddedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func init() {
	favoriteAddCmd.Flags().String("title", "", "item title")
	favoriteAddCmd.Flags().String("creator", "", "item creator")
	favoriteListCmd.Flags().Bool("json", false, "output favorites as JSON")

	favoriteCmd.AddCommand(favoriteAddCmd)
	favoriteCmd.AddCommand(favoriteRemoveCmd)
	favoriteCmd.AddCommand(favoriteListCmd)

	rootCmd.AddCommand(favoriteCmd)
}
