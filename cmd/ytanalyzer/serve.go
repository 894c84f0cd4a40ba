package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/ytanalyzer/internal/config"
	"github.com/nao1215/ytanalyzer/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may finish on exit.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local preview server",
		Long: `Serve starts an HTTP server that renders analyses in the browser.

Routes:
  GET  /health                     liveness and version
  GET  /reports/{id}               HTML preview of the document
  GET  /reports/{id}/download      Markdown document as an attachment
  GET  /reports/{id}/json          aggregate in the backend's envelope
  POST /reports/{id}/critical      request the critical analysis (?perspective=)
  POST /reports/{id}/additional    request the additional analysis

Cached analyses younger than --cache-max-age are served without contacting
the backend.

Examples:
  ytanalyzer serve
  ytanalyzer serve --listen 127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListen,
		"Listen address (host:port)")
	cmd.Flags().Duration("cache-max-age", config.DefaultCacheMaxAge,
		"Serve cached analyses younger than this without asking the backend (0 disables)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if cmd.Flags().Changed("listen") {
		if a.cfg.Listen, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("cache-max-age") {
		if a.cfg.CacheMaxAge, err = cmd.Flags().GetDuration("cache-max-age"); err != nil {
			return err
		}
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	srvCfg := server.Config{
		Addr:        a.cfg.Listen,
		Backend:     a.client,
		CacheMaxAge: a.cfg.CacheMaxAge,
		Perspective: a.cfg.Perspective,
		Logger:      a.logger,
		Version:     getVersion(),
	}
	if a.store != nil {
		srvCfg.Store = a.store
	}
	srv := server.NewServer(srvCfg)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	fmt.Fprintf(a.out, "Preview server listening on http://%s (backend %s)\n", srv.Addr(), a.client.BaseURL())
	fmt.Fprintln(a.out, "Press Ctrl+C to stop.")

	return serve(ctx, srv, a.logger)
}

// serve runs srv until ctx is cancelled or the listener fails.
func serve(ctx context.Context, srv *server.Server, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("initiating graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
		return err
	}
	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
