package cli

import (
	"github.com/spf13/cobra"

	"github.com/mikkelsonm/bitboxing/internal/model"
)

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <cache>",
		Short: "Report a cache as found and print its question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			question, repeat, err := c.Find(cmd.Context(), model.CacheCode(args[0]))
			if err != nil {
				out.PrintError(err)
				return err
			}
			if repeat {
				out.PrintMessage("Already found. Question: " + question)
			} else {
				out.PrintMessage("Question: " + question)
			}
			return nil
		},
	}
}

func newHintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hint <cache>",
		Short: "Print the hint for a found cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			hint, err := c.Hint(cmd.Context(), model.CacheCode(args[0]))
			if err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintMessage("Hint: " + hint)
			return nil
		},
	}
}

func newSolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <cache> <answer>",
		Short: "Submit an answer for a found cache",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			correct, err := c.Solve(cmd.Context(), model.CacheCode(args[0]), args[1])
			if err != nil {
				out.PrintError(err)
				return err
			}
			if correct {
				out.PrintMessage("Correct!")
			} else {
				out.PrintMessage("Incorrect, try again")
			}
			return nil
		},
	}
}
