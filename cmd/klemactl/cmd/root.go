// Package cmd provides the klemactl commands: the catalog refresh job and
// retrieval debugging.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"klema-chatbot/internal/config"
)

// cliState is shared by the subcommands once the root pre-run has loaded it.
type cliState struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCmd creates the root command for the klemactl CLI.
func NewRootCmd() *cobra.Command {
	var verbose bool
	state := &cliState{}

	cmd := &cobra.Command{
		Use:   "klemactl",
		Short: "Operational tools for the Klema Earrings chatbot",
		Long: `klemactl refreshes the product catalog snapshot from the shop's sitemap
and explains how the retrieval engine ranks knowledge and products for a query.

Configuration is read from the environment and .env, like the API server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			level := cfg.LogLevel
			if verbose {
				level = slog.LevelDebug
			}
			state.cfg = cfg
			state.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
			slog.SetDefault(state.logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newScrapeCmd(state))
	cmd.AddCommand(newDebugCmd(state))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
