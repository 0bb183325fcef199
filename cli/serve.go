package cli

import (
	"context"
	"errors"
	"mindmap-share/config"
	"mindmap-share/core"
	"mindmap-share/handlers"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, store, err := openStore(ctx, rootOpts)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					log.WithField("error", err).Error("Failed to close storage")
				}
			}()

			ln, err := net.Listen("tcp", cfg.Server.Addr())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to listen", err)
			}
			return serve(ctx, ln, store, cfg, log)
		},
	}
}

// serve runs the HTTP server on ln until ctx is cancelled, then drains
// in-flight requests for at most the configured shutdown timeout.
func serve(ctx context.Context, ln net.Listener, store core.DocumentStore, cfg *config.Config, log logrus.FieldLogger) error {
	srv := &http.Server{
		Handler:      handlers.NewRouter(store, cfg, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("Listening")
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return WrapExitError(ExitFailure, "server error", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "graceful shutdown failed", err)
	}
	return nil
}
