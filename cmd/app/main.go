package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/KrakenByte/mission-accomplishable/internal/config"
	"github.com/KrakenByte/mission-accomplishable/internal/handler"
	"github.com/KrakenByte/mission-accomplishable/internal/persist"
	"github.com/KrakenByte/mission-accomplishable/internal/repo"
	"github.com/KrakenByte/mission-accomplishable/internal/service"
)

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	return cfg.Build()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	store, err := repo.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer store.Close()
	logger.Info("Storage ready", zap.String("driver", cfg.StorageDriver))

	codec := persist.NewCodec(store, logger,
		persist.WithKeys(cfg.DataKey, cfg.VisitedKey),
		persist.WithMetrics(persist.NewMetrics(prometheus.DefaultRegisterer)),
	)
	board := service.NewBoardService(codec, logger)
	if err := board.Bootstrap(ctx); err != nil {
		logger.Fatal("Failed to bootstrap board", zap.Error(err))
	}

	r := handler.NewRouter(handler.NewBoardHandler(board, logger), promhttp.Handler())

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}
