// Package cmd implements the techwiki command-line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/internal/log"
)

var (
	flagVerbose  bool
	flagJSONLogs bool
)

var rootCmd = &cobra.Command{
	Use:   "techwiki",
	Short: "techwiki - an AI-backed technical encyclopedia",
	Long: `techwiki serves a technical encyclopedia over HTTP and the terminal.

Articles are generated on demand by an AI model, indexed for full-text
search, and linked into a browsable knowledge graph. Run "techwiki serve"
to start the HTTP API, or "techwiki browse" for the terminal UI.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowse(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagJSONLogs, "json-logs", false, "log in JSON format")
}

// newLogger builds the process logger from the persistent flags.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, JSON: flagJSONLogs})
	slog.SetDefault(logger)
	return logger
}
