package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backlab/internal/config"
	"backlab/internal/httpapi"
	"backlab/internal/marketdata"
	"backlab/internal/store"
	"backlab/internal/strategy"
	"backlab/internal/util"
)

func main() {
	// Load config.
	cfgPath := "config/backlab.yaml"
	if p := os.Getenv("BACKLAB_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("loading config: %v", err)
		}
		cfg = config.Default()
	}

	// Setup logging.
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	util.SetDefault(logger)

	// Create stores.
	ps := store.NewParquetStore(cfg.Storage.DataDir)
	ss, err := store.NewSQLiteStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening sqlite store: %v", err)
	}
	defer ss.Close()

	// Select the market-data backend.
	var fetcher marketdata.Fetcher
	switch cfg.Fetch.Source {
	case "alpaca":
		if cfg.Alpaca.APIKey == "" || cfg.Alpaca.APISecret == "" {
			log.Fatal("alpaca source requires APCA_API_KEY_ID and APCA_API_SECRET_KEY")
		}
		fetcher = marketdata.NewAlpacaFetcher(
			cfg.Alpaca.APIKey,
			cfg.Alpaca.APISecret,
			cfg.Alpaca.DataURL,
			cfg.Fetch.RateLimitPerMin,
			cfg.Fetch.MaxAttempts,
		)
	case "mock":
		fetcher = marketdata.NewMockFetcher()
	default:
		log.Fatalf("unknown fetch source: %q", cfg.Fetch.Source)
	}

	srv := httpapi.NewServer(ps, ss, ss, fetcher, strategy.DefaultRegistry(), cfg.Backtest, logger)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		logger.Info("backlab server listening", "addr", httpServer.Addr, "source", fetcher.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down backlab server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
