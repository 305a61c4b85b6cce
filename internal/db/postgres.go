package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"pangan/internal/config"
	"pangan/internal/logx"
)

// ConnectPostgres opens the pool, pings it and makes sure the schema exists.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres: DATABASE_URL not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	logx.Info().Msg("connected to postgres")

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: init schema: %w", err)
	}

	return pool, nil
}

// InitSchema creates the reference and series tables when missing.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, statement := range postgresSchema {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return err
		}
	}

	logx.Info().Msg("schema initialized")
	return nil
}

var postgresSchema = []string{
	// -------------------------------
	// REFERENCE DATA
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS countries (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		code VARCHAR(3) NOT NULL UNIQUE,
		currency VARCHAR(3) NOT NULL,
		geojson_url TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS foods (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	// -------------------------------
	// PRICE SERIES
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS food_prices (
		id UUID PRIMARY KEY,
		country_id UUID NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
		food_id UUID NOT NULL REFERENCES foods(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		open DOUBLE PRECISION,
		low DOUBLE PRECISION,
		high DOUBLE PRECISION,
		close DOUBLE PRECISION,
		date DATE NOT NULL,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (country_id, food_id, year, month)
	)`,
	`CREATE TABLE IF NOT EXISTS food_price_indexes (
		id UUID PRIMARY KEY,
		country_id UUID NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		open DOUBLE PRECISION,
		low DOUBLE PRECISION,
		high DOUBLE PRECISION,
		close DOUBLE PRECISION,
		date DATE NOT NULL,
		created_by TEXT,
		updated_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (country_id, year, month)
	)`,
	`CREATE INDEX IF NOT EXISTS food_prices_food_idx ON food_prices (food_id)`,
}
