package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"expense_tracker/internal/handlers"
	"expense_tracker/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	conn, err := a.openDB()
	if err != nil {
		return err
	}
	defer a.closeDB(conn)

	services, loc, err := a.services(conn)
	if err != nil {
		return err
	}
	apiHandler := handlers.NewHandler(services, a.log, handlers.Options{
		SecureCookie: a.cfg.Auth.SecureCookie,
		SessionTTL:   a.cfg.Auth.TokenTTL,
		Location:     loc,
	})

	srv := server.New(server.Options{
		ReadHeaderTimeout: a.cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      a.cfg.Server.WriteTimeout,
		IdleTimeout:       a.cfg.Server.IdleTimeout,
	})

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Infow("http_server_start", "port", a.cfg.Server.Port, "db", a.cfg.DB.Path)
		return srv.Run(a.cfg.Server.Port, apiHandler.InitRoutes())
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Infow("shutting down server...")

		// allow in-flight requests to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.log.Errorw("server stopped with error", "err", err)
		return err
	}
	a.log.Infow("server stopped")
	return nil
}
