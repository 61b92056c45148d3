package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guildcache/internal/httpserver"
	"guildcache/internal/service"
	"guildcache/internal/ws"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the cache HTTP and websocket API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.log.Sync()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	db, err := a.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	repo, err := a.newRepo(db)
	if err != nil {
		return err
	}

	streams := ws.NewHub()
	router := httpserver.NewRouter(httpserver.Deps{
		AppName:     a.cfg.AppName,
		CORSOrigins: a.cfg.CORSOrigins,
		Sync:        service.NewSyncService(repo, a.log.Named("sync")),
		Social:      service.NewSocialService(repo, a.log.Named("social")),
		Live:        repo,
		Tokens:      a.tokens(),
		Streams:     streams,
		Log:         a.log.Named("http"),
	})

	srv := &http.Server{
		Addr:         a.cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting server",
			zap.String("addr", a.cfg.HTTPAddr()),
			zap.String("driver", a.cfg.DBDriver),
			zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	streams.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Warn("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
