package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/internal/app"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/slug"
)

var generateCmd = &cobra.Command{
	Use:   "generate <category> <topic>",
	Short: "Generate and store an article for a topic",
	Long: `Generate asks the configured AI model for an encyclopedia article on the
given topic and stores it. If the article already exists it is returned
unchanged; generation only happens on a miss.`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	category, topic := args[0], args[1]
	article, generated, err := a.Wiki.GetOrGenerate(ctx, category, slug.Make(topic))
	if err != nil {
		return fmt.Errorf("generating article: %w", err)
	}

	if generated {
		fmt.Printf("generated %s/%s (id %d)\n", article.Category, article.Slug, article.ID)
	} else {
		fmt.Printf("already exists: %s/%s (id %d)\n", article.Category, article.Slug, article.ID)
	}

	// Index the embedding so the related-articles endpoint can find it.
	if generated && a.RAG != nil {
		if err := a.RAG.IndexArticle(ctx, article); err != nil {
			logger.Warn("embedding index failed", "id", article.ID, "error", err)
		}
	}

	fmt.Println()
	fmt.Println(article.Markdown)
	return nil
}
