package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/internal/app"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/log"
	"github.com/dmaas/techwiki/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the encyclopedia in the terminal",
	RunE:  runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal; route logs away from it.
	logger := log.NewNop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	model, err := tui.New(ctx, a.Search, a.Wiki)
	if err != nil {
		return fmt.Errorf("creating TUI: %w", err)
	}

	return tui.Run(ctx, model)
}
