package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// QueryMode selects how repair listings are filtered against the store.
type QueryMode string

const (
	// QueryModeJoin composes the filter client-side with a relational join.
	QueryModeJoin QueryMode = "join"
	// QueryModeProc delegates filtering to the list_repairs_filtered SQL
	// function. Requires a postgres backend.
	QueryModeProc QueryMode = "proc"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port             int       `yaml:"port"`
	RateLimitPerSec  float64   `yaml:"rate_limit_per_sec"`
	RateLimitBurst   int       `yaml:"rate_limit_burst"`
	CORSAllowOrigins []string  `yaml:"cors_allow_origins"`
	QueryMode        QueryMode `yaml:"query_mode"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path. The database DSN may be
// overridden through the DATABASE_DSN environment variable; an empty DSN
// after both sources is an error so that a misconfigured process fails at
// startup rather than on the first request.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database.dsn is not set (config file or DATABASE_DSN)")
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if len(cfg.Server.CORSAllowOrigins) == 0 {
		cfg.Server.CORSAllowOrigins = []string{"*"}
	}

	switch cfg.Server.QueryMode {
	case "":
		cfg.Server.QueryMode = QueryModeJoin
	case QueryModeJoin, QueryModeProc:
	default:
		return nil, fmt.Errorf("server.query_mode must be %q or %q, got %q",
			QueryModeJoin, QueryModeProc, cfg.Server.QueryMode)
	}

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	return &cfg, nil
}
