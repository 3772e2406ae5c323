package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/internal/app"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/ingest"
)

var (
	ingestCategory string
	ingestCrawl    bool
	ingestMaxPages int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <url>",
	Short: "Import external pages as draft articles",
	Long: `Ingest fetches a page, extracts its readable content, converts it to
Markdown, and stores it as a draft article for review. With --crawl it
follows same-host links up to --max-pages pages.

Only one ingest run executes at a time; concurrent runs fail fast.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestCategory, "category", "imported", "category for imported articles")
	ingestCmd.Flags().BoolVar(&ingestCrawl, "crawl", false, "follow same-host links")
	ingestCmd.Flags().IntVar(&ingestMaxPages, "max-pages", 10, "page cap when crawling")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
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

	if ingestCrawl {
		articles, err := a.Ingester.Crawl(ctx, args[0], ingestCategory, ingestMaxPages)
		if err != nil {
			return ingestError(err)
		}
		for _, imported := range articles {
			fmt.Printf("imported %s/%s (id %d)\n", imported.Category, imported.Slug, imported.ID)
		}
		fmt.Printf("%d pages imported\n", len(articles))
		return nil
	}

	imported, err := a.Ingester.Page(ctx, args[0], ingestCategory)
	if err != nil {
		return ingestError(err)
	}
	fmt.Printf("imported %s/%s (id %d)\n", imported.Category, imported.Slug, imported.ID)
	return nil
}

func ingestError(err error) error {
	if errors.Is(err, ingest.ErrLocked) {
		return errors.New("another ingest run is in progress, try again later")
	}
	return fmt.Errorf("ingesting: %w", err)
}
