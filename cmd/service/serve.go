// cmd/service/serve.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github-profile-finder/internal/api"
	"github-profile-finder/internal/github"
	"github-profile-finder/internal/metrics"
	"github-profile-finder/internal/query"
	"github-profile-finder/internal/view"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the profile finder page",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	ghClient, err := github.NewClient(cfg.GithubAPIURL, nil, logger.With("component", "github"))
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	sessions, err := query.NewSessions(cfg.MaxSessions, ghClient, logger.With("component", "query"), m, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      api.NewRouter(sessions, renderer, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: api.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", "addr", cfg.ListenAddr, "github_api", cfg.GithubAPIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received. Stopping server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		logger.Info("Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
