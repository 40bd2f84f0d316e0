package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikkelsonm/bitboxing/internal/client"
)

var (
	cfg *Config
	c   *client.Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bitboxing",
		Short: "CLI tool for the bitboxing game server",
		Long: `bitboxing is a CLI tool for playing bitboxing over the wire protocol.

It supports registration, reporting finds, requesting hints, submitting
answers and reading the leaderboards.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Player == "" {
				return errors.New("player name required (--player or BITBOXING_PLAYER)")
			}
			c = client.New(cfg.ServerAddr, cfg.Player)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerAddr, "server", cfg.ServerAddr, "Server address (env: BITBOXING_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Player, "player", cfg.Player, "Player name used as the sender (env: BITBOXING_PLAYER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newFindCmd())
	rootCmd.AddCommand(newHintCmd())
	rootCmd.AddCommand(newSolveCmd())
	rootCmd.AddCommand(newScoreCmd())
	rootCmd.AddCommand(newTopCmd())
	rootCmd.AddCommand(newCacheTopCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
