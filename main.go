package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Gin_postgres_redis_peer_lending/app"
	"Gin_postgres_redis_peer_lending/config"
	"Gin_postgres_redis_peer_lending/routes"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	application := app.MustNew(cfg)
	defer application.Close()

	routes.RegisterRoutes(application.Router, application)
	app.BootstrapDevSession(context.Background(), application)

	srv := &http.Server{
		Addr:              application.Addr(),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		application.Log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			application.Log.Error("serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		application.Log.Error("shutdown", "error", err)
	}
}
