package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/samuel/internal/model"
)

func newAchievementsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "achievements",
		Short: "Achievement commands (requires the Steam client to be running)",
	}

	cmd.AddCommand(newAchievementsListCmd(e))
	cmd.AddCommand(newAchievementsTriggerCmd(e))
	cmd.AddCommand(newAchievementsClearCmd(e))
	cmd.AddCommand(newAchievementsResetAllCmd(e))

	return cmd
}

// appIDArg validates that the first positional argument is an appid before
// any I/O happens
func appIDArg(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return err
		}
		_, err := model.ParseAppID(args[0])
		return err
	}
}

// gameTarget canonicalises an appid argument so "010" matches appid 10.
// Names are passed through untouched.
func gameTarget(arg string, byName bool) string {
	if byName {
		return arg
	}
	id, err := model.ParseAppID(arg)
	if err != nil {
		return arg
	}
	return id.String()
}

func newAchievementsListCmd(e *env) *cobra.Command {
	var (
		byGameName    bool
		achievementID string
		full          bool
	)

	cmd := &cobra.Command{
		Use:   "list <game_id>",
		Short: "List the achievements of an owned game",
		Args: func(cmd *cobra.Command, args []string) error {
			if byGameName {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return appIDArg(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			game, err := e.app.Inventory.FindGame(ctx, e.cfg.Credentials, gameTarget(args[0], byGameName), byGameName)
			if err = e.warnCacheIO(err); err != nil {
				return err
			}

			if achievementID != "" {
				achievement, err := e.app.Achievements.Achievement(ctx, game.AppID, achievementID)
				if err != nil {
					return err
				}
				e.out.Print(achievement)
				return nil
			}

			list, err := e.app.Achievements.ListAchievements(ctx, game.AppID)
			if err != nil {
				return err
			}

			e.out.Print(AchievementList{
				AppID:        game.AppID,
				Achievements: list,
				Full:         full,
			})
			return nil
		},
	}

	cmd.Flags().BoolVar(&byGameName, "by-game-name", false, "Treat game_id as a game name")
	cmd.Flags().StringVar(&achievementID, "achievement-id", "", "Show only the given achievement")
	cmd.Flags().BoolVar(&full, "full", false, "Show full descriptions instead of truncating")

	return cmd
}

func newAchievementsTriggerCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <game_id> <achievement_id>",
		Short: "Unlock an achievement",
		Args:  appIDArg(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, _ := model.ParseAppID(args[0])

			if err := e.app.Achievements.Trigger(cmd.Context(), appID, args[1]); err != nil {
				return err
			}

			e.out.PrintMessage(fmt.Sprintf("Unlocked %s for app %s", args[1], appID))
			return nil
		},
	}
}

func newAchievementsClearCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <game_id> <achievement_id>",
		Short: "Lock an achievement again",
		Args:  appIDArg(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, _ := model.ParseAppID(args[0])

			if err := e.app.Achievements.Clear(cmd.Context(), appID, args[1]); err != nil {
				return err
			}

			e.out.PrintMessage(fmt.Sprintf("Cleared %s for app %s", args[1], appID))
			return nil
		},
	}
}

func newAchievementsResetAllCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset_all <game_id>",
		Short: "Lock every achievement of a game",
		Args:  appIDArg(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appID, _ := model.ParseAppID(args[0])

			report, err := e.app.Achievements.ResetAll(cmd.Context(), appID)
			if err != nil {
				return err
			}

			e.out.Print(report)

			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d achievements could not be cleared: %w",
					len(failed), len(report.Outcomes), failed[0].Err)
			}
			return nil
		},
	}
}
