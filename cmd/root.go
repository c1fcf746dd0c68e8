// Package cmd holds the schemes command line: the HTTP server, migrations
// and offline file validation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/satheeshds/schemes/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "schemes",
	Short: "Distributor scheme service",
	Long: `schemes manages distributors, the article catalog, uploaded billing data and
commission schemes over a REST API.

  schemes serve                          # start the API server
  schemes migrate                        # apply database migrations
  schemes validate distributors d.xlsx   # check a file without storing it`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c
		setupLogging(cfg.LogLevel)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging configures structured logging
func setupLogging(level string) {
	l := slog.LevelInfo
	if level == "debug" {
		l = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l})))
}
