package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// MemoryDSN is an in-process database that lives as long as its single connection.
const MemoryDSN = ":memory:"

// OpenSQLite opens the embedded database with foreign keys enforced on every
// connection and runs the migrations.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := MigrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return db, nil
}

func sqliteDSN(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func MigrateSQLite(ctx context.Context, db *sql.DB) error {
	for _, statement := range sqliteSchema {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON;`,
	`CREATE TABLE IF NOT EXISTS countries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		code TEXT NOT NULL UNIQUE,
		currency TEXT NOT NULL,
		geojson_url TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS foods (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		created_by TEXT,
		updated_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS food_prices (
		id TEXT PRIMARY KEY,
		country_id TEXT NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
		food_id TEXT NOT NULL REFERENCES foods(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		open REAL,
		low REAL,
		high REAL,
		close REAL,
		date TEXT NOT NULL,
		created_by TEXT,
		updated_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (country_id, food_id, year, month)
	);`,
	`CREATE TABLE IF NOT EXISTS food_price_indexes (
		id TEXT PRIMARY KEY,
		country_id TEXT NOT NULL REFERENCES countries(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		open REAL,
		low REAL,
		high REAL,
		close REAL,
		date TEXT NOT NULL,
		created_by TEXT,
		updated_by TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (country_id, year, month)
	);`,
	`CREATE INDEX IF NOT EXISTS food_prices_food_idx ON food_prices (food_id);`,
}
