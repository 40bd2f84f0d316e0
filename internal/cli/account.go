package cli

import (
	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <password>",
		Short: "Register the player name with the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if err := c.Register(cmd.Context(), args[0]); err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintMessage("Registered " + cfg.Player)
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <password>",
		Short: "Verify the player's password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewOutput(cfg.Output)
			if err := c.Login(cmd.Context(), args[0]); err != nil {
				out.PrintError(err)
				return err
			}
			out.PrintMessage("Logged in as " + cfg.Player)
			return nil
		},
	}
}
