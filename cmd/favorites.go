// Copyright (c) 2025 ArenaTV
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage your favorite sports and teams",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your favorite sports and teams",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		if _, err := a.ready(ctx); err != nil {
			return err
		}
		sports, err := a.catalog.FavoriteSports(ctx)
		if err != nil {
			return present(a.cfg, err, "loading favorites")
		}
		teams, err := a.catalog.FavoriteTeams(ctx)
		if err != nil {
			return present(a.cfg, err, "loading favorites")
		}
		if len(sports) == 0 && len(teams) == 0 {
			pterm.Println("No favorites yet. Add one with 'arenatv favorites add-sport <id>'.")
			return nil
		}
		rows := make([][]string, 0, len(sports)+len(teams))
		for _, f := range sports {
			name := f.SportID
			if f.Sport != nil {
				name = f.Sport.Name
			}
			rows = append(rows, []string{"sport", name, f.SportID})
		}
		for _, f := range teams {
			name := f.TeamID
			if f.Team != nil {
				name = f.Team.Name
			}
			rows = append(rows, []string{"team", name, f.TeamID})
		}
		return renderTable([]string{"Kind", "Name", "ID"}, rows)
	}),
}

// favoriteToggle builds a command that flips one favorite. isFavorite is the
// state the user says the item is currently in.
func favoriteToggle(use, short string, isFavorite bool, team bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app, args []string) error {
			if _, err := a.ready(ctx); err != nil {
				return err
			}
			var err error
			if team {
				err = a.catalog.ToggleFavoriteTeam(ctx, args[0], isFavorite)
			} else {
				err = a.catalog.ToggleFavoriteSport(ctx, args[0], isFavorite)
			}
			if err != nil {
				return present(a.cfg, err, "updating favorites")
			}
			if isFavorite {
				pterm.Println("✅ Removed from favorites")
			} else {
				pterm.Println("⭐ Added to favorites")
			}
			return nil
		}),
	}
}

func init() {
	favoritesCmd.AddCommand(
		favoritesListCmd,
		favoriteToggle("add-sport", "Add a sport to your favorites", false, false),
		favoriteToggle("remove-sport", "Remove a sport from your favorites", true, false),
		favoriteToggle("add-team", "Add a team to your favorites", false, true),
		favoriteToggle("remove-team", "Remove a team from your favorites", true, true),
	)
	rootCmd.AddCommand(favoritesCmd)
}
