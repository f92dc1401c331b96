package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/scholar-digest/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON API for the browser page",
	Long: `Serve exposes search, year filtering, selection, copy and export as a JSON
API. Each browser gets its own session, identified by a cookie and expired
after the configured idle time. Prometheus metrics are served on /metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c := cfg
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c.Server.Addr = addr
	}

	chain, store, err := openCredentials(c)
	if err != nil {
		return err
	}
	defer store.Close()

	m, reg := newMetrics()
	srv := server.New(c.Server, server.Deps{
		Searcher:       newSearchClient(c, m),
		Pipeline:       newPipeline(c, chain, m),
		Credentials:    store,
		Provider:       c.Summary.Provider,
		Selection:      c.Selection,
		DefaultFormat:  c.Export.Format,
		SummaryTimeout: c.Summary.Timeout,
		Logger:         logger,
		Metrics:        m,
		Gatherer:       reg,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		return srv.SweepSessions(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
