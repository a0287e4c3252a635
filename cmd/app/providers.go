package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/chat"
	"github.com/Lalithx4/agroai/internal/domain/connectivity"
	"github.com/Lalithx4/agroai/internal/domain/scan"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/domain/weather"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	"github.com/Lalithx4/agroai/internal/infra/config"
	infraconn "github.com/Lalithx4/agroai/internal/infra/connectivity"
	"github.com/Lalithx4/agroai/internal/infra/imagestore"
	"github.com/Lalithx4/agroai/internal/infra/kvstore"
	"github.com/Lalithx4/agroai/internal/infra/syncremote"
)

// provideStore selects the durable key/value driver. Any setup failure
// falls back to the in-memory store so the app still starts, with a logged
// warning about data not surviving restarts.
func provideStore(cfg *config.Config, logger *slog.Logger) cache.Store {
	fallback := kvstore.NewMemoryStore()
	switch strings.ToLower(cfg.Storage.Driver) {
	case "", "memory":
		logger.Info("using in-memory store, data will not survive restarts")
		return fallback
	case "sqlite":
		store, err := kvstore.NewSQLiteStore(cfg.Storage.SQLite.Path)
		if err != nil {
			logger.Error("sqlite init failed, using memory store", "path", cfg.Storage.SQLite.Path, "error", err)
			return fallback
		}
		logger.Info("sqlite store enabled", "path", cfg.Storage.SQLite.Path)
		return store
	case "postgres":
		dsn := strings.TrimSpace(cfg.Storage.Postgres.DSN)
		if dsn == "" {
			logger.Error("postgres dsn not set, using memory store")
			return fallback
		}
		poolConfig, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			logger.Error("invalid postgres dsn, using memory store", "error", err)
			return fallback
		}
		if cfg.Storage.Postgres.MaxConns > 0 {
			poolConfig.MaxConns = cfg.Storage.Postgres.MaxConns
		}
		if cfg.Storage.Postgres.MinConns > 0 {
			poolConfig.MinConns = cfg.Storage.Postgres.MinConns
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			logger.Error("postgres pool init failed, using memory store", "error", err)
			return fallback
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		store, err := kvstore.NewPostgresStore(ctx, pool)
		if err != nil {
			logger.Error("postgres schema init failed, using memory store", "error", err)
			pool.Close()
			return fallback
		}
		logger.Info("postgres store enabled")
		return store
	case "valkey":
		client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.Storage.Valkey.Addr}})
		if err != nil {
			logger.Error("valkey client init failed, using memory store", "addr", cfg.Storage.Valkey.Addr, "error", err)
			return fallback
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, using memory store", "addr", cfg.Storage.Valkey.Addr, "error", err)
			return fallback
		}
		logger.Info("valkey store enabled", "addr", cfg.Storage.Valkey.Addr)
		return kvstore.NewValkeyStore(client)
	default:
		logger.Error("unknown storage driver, using memory store", "driver", cfg.Storage.Driver)
		return fallback
	}
}

func provideKV(cfg *config.Config, store cache.Store, logger *slog.Logger) *cache.KV {
	return cache.NewKV(store, cfg.Storage.Namespace, logger)
}

func provideCacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		WeatherTTL:     cfg.Cache.WeatherTTL,
		ScanHistoryCap: cfg.Cache.ScanHistoryCap,
		ChatHistoryCap: cfg.Cache.ChatHistoryCap,
		CoordPrecision: cfg.Cache.CoordPrecision,
	}
}

func provideAPIClient(cfg *config.Config) *agroapi.Client {
	return agroapi.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Timeout)
}

func provideSyncConfig(cfg *config.Config) syncqueue.Config {
	return syncqueue.Config{
		BaseBackoff:     cfg.Sync.BaseBackoff,
		MaxBackoff:      cfg.Sync.MaxBackoff,
		SyncedRetention: cfg.Sync.SyncedRetention,
	}
}

func provideMonitor(cfg *config.Config, logger *slog.Logger) *connectivity.Monitor {
	url := cfg.Connectivity.ProbeURL
	if url == "" {
		url = strings.TrimRight(cfg.Analysis.BaseURL, "/") + "/api/health-check"
	}
	probe := infraconn.NewHTTPProbe(url, cfg.Connectivity.ProbeTimeout)
	return connectivity.NewMonitor(probe, cfg.Connectivity.ProbeInterval, logger)
}

func provideImageStore(cfg *config.Config, logger *slog.Logger) scan.ImageStore {
	if strings.ToLower(cfg.Images.Driver) == "s3" {
		s3 := cfg.Images.S3
		store, err := imagestore.NewS3Store(s3.Endpoint, s3.AccessKey, s3.SecretKey, s3.Bucket, s3.Region, logger)
		if err != nil {
			logger.Error("s3 image store init failed, using memory store", "error", err)
			return imagestore.NewMemoryStore()
		}
		logger.Info("s3 image store enabled", "bucket", s3.Bucket)
		return store
	}
	return imagestore.NewMemoryStore()
}

func provideScanConfig(cfg *config.Config) scan.Config {
	return scan.Config{Language: cfg.Analysis.Language}
}

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{Language: cfg.Analysis.Language}
}

func provideWeatherConfig(cfg *config.Config) weather.Config {
	return weather.Config{Language: cfg.Analysis.Language}
}

func provideSyncRemote(client *agroapi.Client) syncqueue.Remote {
	return syncremote.NewRemote(client)
}
