// Package app wires stores, caches and services from configuration. Both
// binaries start from Open.
package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"pangan/internal/cache"
	"pangan/internal/catalog"
	"pangan/internal/config"
	"pangan/internal/db"
	"pangan/internal/ingest"
	"pangan/internal/logx"
	"pangan/internal/price"
)

type App struct {
	Catalog *catalog.Service
	Prices  *price.Service
	Ingest  *ingest.Service

	Ping func(ctx context.Context) error

	closers []func()
}

// Open connects the configured store and optional Redis cache. Close releases them.
func Open(ctx context.Context, cfg *config.AppConfig) (*App, error) {
	a := &App{}

	var (
		catalogRepo catalog.Repository
		priceRepo   price.Repository
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.Ping = pool.Ping
		catalogRepo = catalog.NewPostgresRepository(pool)
		priceRepo = price.NewPostgresRepository(pool)
	case config.DriverSQLite:
		sqlDB, err := openSQLite(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { sqlDB.Close() })
		a.Ping = sqlDB.PingContext
		catalogRepo = catalog.NewSQLiteRepository(sqlDB)
		priceRepo = price.NewSQLiteRepository(sqlDB)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}

	var c cache.Cache = cache.Nop{}
	if cfg.Redis.URL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			// the catalog still works uncached
			logx.Warn().Err(err).Msg("redis unavailable, reference data will not be cached")
		} else {
			a.closers = append(a.closers, closeRedis(client))
			c = cache.NewRedis(client, "pangan:", cfg.Redis.TTL)
		}
	}

	a.Catalog = catalog.NewService(catalogRepo, c)
	a.Prices = price.NewService(priceRepo)
	a.Ingest = ingest.NewService(a.Catalog, a.Prices)
	return a, nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	logx.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
	return sqlDB, nil
}

func closeRedis(client *redis.Client) func() {
	return func() {
		if err := client.Close(); err != nil {
			logx.Warn().Err(err).Msg("closing redis")
		}
	}
}
