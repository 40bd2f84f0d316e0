package cli

import (
	"github.com/spf13/cobra"

	"github.com/mikkelsonm/bitboxing/internal/model"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score [player]",
		Short: "Print a player's finds and solves (defaults to yourself)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			player := cfg.Player
			if len(args) > 0 {
				player = args[0]
			}
			score, err := c.Score(cmd.Context(), player)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(score)
			return nil
		},
	}
}

func newTopCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Print the game-wide leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			scores, err := c.Leaderboard(cmd.Context(), count)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(scores)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", -1, "Number of entries (server default if unset)")
	return cmd
}

func newCacheTopCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "cache-top <cache>",
		Short: "Print the standings for one cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			standings, err := c.CacheLeaderboard(cmd.Context(), model.CacheCode(args[0]), count)
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.Print(standings)
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", -1, "Number of entries (server default if unset)")
	return cmd
}
