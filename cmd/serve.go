package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmaas/techwiki/api"
	"github.com/dmaas/techwiki/internal/app"
	"github.com/dmaas/techwiki/internal/config"
	"github.com/dmaas/techwiki/internal/graph"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [addr]",
	Short: "Start the HTTP API server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (host:port), overrides config")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.ListenAddr
	if len(args) > 0 {
		addr = args[0]
	}
	if serveAddr != "" {
		addr = serveAddr
	}
	if err := validateAddr(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	srv := api.NewServer(api.Deps{
		Pool:     a.Pool,
		Searcher: a.Search,
		Graph:    graphWithDefaults{builder: a.Graph, cfg: cfg},
		Wiki:     a.Wiki,
		Articles: a.Articles,
		Related:  a.RAG,
		Runner:   a.Runner,
		Library:  a.Library,
		Collab:   a.Collab,
		Logger:   logger,
	})

	return srv.Run(ctx, addr)
}

// graphWithDefaults fills zero-valued graph options from configuration before
// delegating to the builder, so operators can tune the cache window and
// cross-edge budget without clients knowing the values.
type graphWithDefaults struct {
	builder *graph.Builder
	cfg     *config.Config
}

func (g graphWithDefaults) Build(ctx context.Context, opts graph.Options) (*graph.Payload, error) {
	if opts.MaxCrossEdges <= 0 {
		opts.MaxCrossEdges = g.cfg.GraphMaxCrossEdges
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = g.cfg.GraphCacheTTL
	}
	return g.builder.Build(ctx, opts)
}
