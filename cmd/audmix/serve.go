// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ik5/audmix/server"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mixer and the library over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Server.Addr
			}

			h := server.New(a.newMixer(a.cfg.Mix.Resample), a.store, a.log, server.Config{
				GainA:     a.cfg.Mix.GainA,
				GainB:     a.cfg.Mix.GainB,
				MaxUpload: a.cfg.Server.MaxUpload,
			})

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Handler:           h.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			a.log.Info("listening", zap.String("addr", ln.Addr().String()))
			fmt.Fprintln(cmd.OutOrStdout(), ln.Addr().String())

			return serveUntilDone(cmd.Context(), srv, ln, a.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (default from config)")

	return cmd
}

// serveUntilDone serves on ln until ctx ends, then shuts srv down gracefully.
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	log.Info("server stopped")
	return nil
}
