package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/internal/app"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/graph"
)

var (
	graphMode          string
	graphMaxCrossEdges int
	graphLimit         int
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Build the knowledge graph and print it as JSON",
	RunE:  runGraph,
}

func init() {
	graphCmd.Flags().StringVar(&graphMode, "mode", graph.ModeLinked, "graph mode: basic or linked")
	graphCmd.Flags().IntVar(&graphMaxCrossEdges, "max-cross-edges", 0, "cross-edge budget (0 = default)")
	graphCmd.Flags().IntVar(&graphLimit, "limit", 0, "maximum corpus rows (0 = no cap)")
	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	payload, err := a.Graph.Build(ctx, graph.Options{
		Mode:          graphMode,
		MaxCrossEdges: graphMaxCrossEdges,
		Limit:         graphLimit,
	})
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
