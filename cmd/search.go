package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/internal/app"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Full-text search over the article corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	a, err := app.SetupStorage(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing storage: %w", err)
	}
	defer func() { _ = a.Close() }()

	query := strings.Join(args, " ")
	results, err := a.Search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no results")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%s/%s  %s\n", r.Category, r.Slug, r.Topic)
		if r.Snippet != "" {
			fmt.Printf("    %s\n", stripHighlights(r.Snippet))
		}
	}
	return nil
}

// stripHighlights removes the HTML highlight markers for terminal output.
func stripHighlights(s string) string {
	s = strings.ReplaceAll(s, search.HighlightStart, "")
	return strings.ReplaceAll(s, search.HighlightEnd, "")
}
