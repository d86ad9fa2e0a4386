// @title           Cloud Drive API
// @version         1.0
// @description     Personal file storage: folders, uploads, trash, stars and zip exports.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "cloud-drive/docs"
	"cloud-drive/internal/api"
	"cloud-drive/internal/config"
	"cloud-drive/internal/database"
	"cloud-drive/internal/logger"
	"cloud-drive/internal/storage"
	"cloud-drive/internal/websocket"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	bootLog := logger.New(os.Stderr, "info")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Error("cannot load configuration", "error", err)
		return err
	}
	log := logger.New(os.Stdout, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := database.Connect(ctx, cfg.DB.Source)
	if err != nil {
		log.Error("cannot connect to database", "error", err)
		return err
	}
	defer store.Close()
	log.Info("connected to database")

	localStorage, err := storage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.PublicURL, cfg.JWT.Secret)
	if err != nil {
		log.Error("cannot initialise blob storage", "path", cfg.Storage.Path, "error", err)
		return err
	}
	log.Info("blob storage ready", "path", cfg.Storage.Path)

	wsHub := websocket.NewHub(log)
	go wsHub.Run(ctx)

	server := api.NewServer(cfg, store, localStorage, store, wsHub, log)

	httpServer := &http.Server{
		Addr:              cfg.AppHost,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.AppHost)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
