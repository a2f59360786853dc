package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	_ "github.com/lib/pq"

	"wildcabins/internal/catalog"
	"wildcabins/internal/config"
	"wildcabins/internal/funnel"
	"wildcabins/internal/server"
	"wildcabins/internal/storage"
	"wildcabins/pkg/ledger"
	"wildcabins/pkg/logger"
	"wildcabins/pkg/redis"
)

// ENTRY POINT

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	redisClient := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	defer redisClient.Close()

	pgStorage, err := storage.NewPostgresStorage(ctx, cfg.Database, redisClient, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to init PostgreSQL storage", zap.Error(err))
	}
	defer pgStorage.Close()

	if err := storage.RunMigrations(ctx, pgStorage.DB(), zapLogger); err != nil {
		zapLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	ledgerClient := ledger.NewClient(cfg.Ledger.BaseURL, cfg.Ledger.APIKey, cfg.Ledger.Timeout, zapLogger)

	cat := catalog.Default()
	states := funnel.NewStateStorage(redisClient, cfg.Funnel.SessionTTL)
	manager := funnel.NewManager(states, cat, pgStorage, zapLogger)

	srv := server.New(cfg.HTTP, cat, manager, pgStorage, ledgerClient, zapLogger)

	if err := srv.Start(ctx); err != nil {
		zapLogger.Fatal("Server stopped with error", zap.Error(err))
	}

	zapLogger.Info("Server shutdown gracefully")
}
