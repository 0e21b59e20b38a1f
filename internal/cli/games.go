package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/inventory"
)

func newGamesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Owned games commands",
	}

	cmd.AddCommand(newGamesFindCmd(e))
	cmd.AddCommand(newGamesListCmd(e))

	return cmd
}

func newGamesFindCmd(e *env) *cobra.Command {
	var byName bool

	cmd := &cobra.Command{
		Use:   "find <game_id>",
		Short: "Find an owned game by appid or name",
		Args: func(cmd *cobra.Command, args []string) error {
			if byName {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return appIDArg(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := gameTarget(args[0], byName)
			game, err := e.app.Inventory.FindGame(cmd.Context(), e.cfg.Credentials, target, byName)
			if err = e.warnCacheIO(err); err != nil {
				return err
			}

			e.out.Print(game)
			return nil
		},
	}

	cmd.Flags().BoolVar(&byName, "by-name", false, "Match the game by name instead of appid")

	return cmd
}

func newGamesListCmd(e *env) *cobra.Command {
	var (
		noHeader bool
		sortBy   string
		sortKey  *inventory.SortKey
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List owned games",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return err
			}
			if cmd.Flags().Changed("sort-by") {
				key, err := inventory.ParseSortKey(sortBy)
				if err != nil {
					return err
				}
				sortKey = &key
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := e.app.Inventory.GetOwnedGames(cmd.Context(), e.cfg.Credentials)
			if err = e.warnCacheIO(err); err != nil {
				return err
			}

			games := snapshot.Games
			if sortKey != nil {
				games = inventory.SortGames(games, *sortKey)
			}

			e.out.Print(GameList{
				Games:     games,
				FetchedAt: snapshot.FetchedAt,
				NoHeader:  noHeader,
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "Omit the header row")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "Sort by column: 0=appid, 1=name, 2=playtime")

	return cmd
}

// warnCacheIO downgrades a cache write failure to a warning when the data it
// accompanies is still usable
func (e *env) warnCacheIO(err error) error {
	if err != nil && errors.Is(err, model.ErrCacheIO) {
		e.out.PrintWarning(err)
		return nil
	}
	return err
}
