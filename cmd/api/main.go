package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pg "foster-tracker/internal/adapters/storage/postgres"
	"foster-tracker/internal/adapters/storage/sqlite"
	"foster-tracker/internal/domain/filters"
	"foster-tracker/internal/platform/config"
	"foster-tracker/internal/platform/logger"
	"foster-tracker/internal/platform/metrics"
	"foster-tracker/internal/router"
)

func main() {
	cfg := config.Load()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})

	db, err := openStore(cfg.Storage)
	if err != nil {
		log.Error("store init failed", map[string]any{"store": string(cfg.Storage.Store), "error": logger.ErrField(err)})
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	r := router.NewRouter(router.Options{
		AuthVerifier: nil, // sin verifier para modo dev
		DB:           db,
		Dialect:      string(cfg.Storage.Store),
		Logger:       log,
		Metrics:      metrics.New(),
		Limits: filters.Limits{
			DefaultPageSize: cfg.Listing.DefaultPageSize,
			MaxPageSize:     cfg.Listing.MaxPageSize,
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "store": string(cfg.Storage.Store)})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", map[string]any{"error": logger.ErrField(err)})
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", map[string]any{"error": logger.ErrField(err)})
	}
	log.Info("server stopped", nil)
}

// openStore devuelve nil para el store in-memory.
func openStore(cfg config.StorageConfig) (*sql.DB, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := pg.Open(cfg.DSN)
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case config.StoreSQLite:
		return sqlite.Open(cfg.SQLitePath)
	default:
		return nil, nil
	}
}
