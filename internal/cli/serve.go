package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/roster/internal/web"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server on SERVER_HOST:SERVER_PORT.

The server runs until SIGINT or SIGTERM, then drains in-flight requests
for up to SERVER_SHUTDOWN_TIMEOUT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions) error {
	cfg := opts.Config
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	var registerer prometheus.Registerer
	if reg != nil {
		registerer = reg
	}
	svc, st, err := openService(ctx, cfg, registerer)
	if err != nil {
		return err
	}
	defer closeStore(st)

	var webReg web.Registry
	if reg != nil {
		webReg = reg
	}
	server, err := web.NewServer(svc, cfg, webReg)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to create server", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := svc.ImportStatus(); st.Active > 0 {
			slog.Info("waiting for imports to complete", "active", st.Active)
			if err := svc.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	slog.Info("server stopped")
	return nil
}
