// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Environment represents the deployment environment of the service.
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// ParseEnvironment falls back to Development for unknown values.
func ParseEnvironment(v string) Environment {
	switch Environment(strings.ToLower(strings.TrimSpace(v))) {
	case Production:
		return Production
	case Testing:
		return Testing
	default:
		return Development
	}
}

func (e Environment) IsProduction() bool {
	return e == Production
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver          string        `envconfig:"DB_DRIVER" default:"postgres"`
	URL             string        `envconfig:"DATABASE_URL"`
	SQLitePath      string        `envconfig:"SQLITE_PATH" default:"pangan.db"`
	MaxConns        int32         `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int32         `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REDIS_URL"`
	TTL          time.Duration `envconfig:"REDIS_TTL" default:"5m"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

// AppConfig holds every setting of the API and importer binaries.
type AppConfig struct {
	Env          string   `envconfig:"APP_ENV" default:"development"`
	Port         string   `envconfig:"PORT" default:"8080"`
	LogLevel     string   `envconfig:"LOG_LEVEL" default:"debug"`
	JWTSecret    string   `envconfig:"JWT_SECRET"`
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`

	Database DatabaseConfig
	Redis    RedisConfig
}

func (c AppConfig) Environment() Environment {
	return ParseEnvironment(c.Env)
}

// Load reads .env outside production and then the process environment.
func Load() (*AppConfig, error) {
	if ParseEnvironment(os.Getenv("APP_ENV")) != Production {
		_ = godotenv.Load()
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c AppConfig) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return errors.New("config: DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("config: unknown DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return errors.New("config: DB_MIN_CONNS exceeds DB_MAX_CONNS")
	}
	return nil
}

// RequireJWTSecret is checked by binaries that serve authenticated routes.
func (c AppConfig) RequireJWTSecret() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("config: JWT_SECRET is not set")
	}
	return nil
}
