package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/wikibot/internal/http"
	"github.com/fyrsmithlabs/wikibot/internal/prefix"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin HTTP API",
		Long: `Run the admin HTTP API until interrupted.

The server exposes dictionary, prefix, recipe and mod lookups under /api/v1,
plus /health and Prometheus /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, opts.configPath, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("host") {
				a.cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return runServer(ctx, a)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "override server.host")
	cmd.Flags().IntVar(&port, "port", 0, "override server.port")
	return cmd
}

// runServer serves until ctx is cancelled, then shuts down within the
// configured timeout.
func runServer(ctx context.Context, a *app) error {
	srv, err := http.NewServer(a.svc, a.logger, &http.Config{
		Host:      a.cfg.Server.Host,
		Port:      a.cfg.Server.Port,
		RateLimit: a.cfg.Server.RateLimit,
		RateBurst: a.cfg.Server.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	if a.cfg.Storage.WatchPrefixes {
		w, err := a.prefixes.Watch(ctx, prefix.DefaultDebounce)
		if err != nil {
			// Serving without hot reload is still useful.
			a.logger.Warn(ctx, "prefix table will not be reloaded on edit", zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error(shutdownCtx, "http shutdown failed", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info(context.Background(), "wikibot stopped")
	return nil
}
