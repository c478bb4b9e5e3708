package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	"stocksync_api/config"
	"stocksync_api/internal/storage"
	syncapp "stocksync_api/internal/sync"
	"stocksync_api/metrics"
	"stocksync_api/pkg/dbconnect/postgres"
	"stocksync_api/pkg/logger"
)

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appCfg, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config file %s: %v", cfg.ConfigPath, err)
	}

	baseLog := logger.NewLogger(os.Stdout, "[stocksync]")

	var blobStorage storage.BlobStorage
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		blobStorage = storage.NewRedisStorage(client)
	} else {
		baseLog.Log("REDIS_ADDR not set, using in-memory storage (local runs only)")
		blobStorage = storage.NewMemoryStorage()
	}

	// run log is optional; a dead database must not block the sync
	var runLog *storage.RunLogRepository
	if runLog, err = storage.NewRunLogRepository(postgres.NewPgConnector(cfg.Postgres)); err != nil {
		baseLog.Log("Run log disabled: %v", err)
		runLog = nil
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go func() {
			http.Handle("/metrics", metrics.MetricsHandler())
			if err := http.ListenAndServe(addr, nil); err != nil {
				baseLog.Log("Metrics endpoint stopped: %v", err)
			}
		}()
	}

	app := syncapp.NewApp(cfg, appCfg, blobStorage, runLog, baseLog)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}
