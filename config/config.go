// Package config reads service settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// maxUploadMB caps MAX_UPLOAD_MB at 1 GiB.
const maxUploadMB = 1024

type Config struct {
	Port            string
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	AuthUser        string
	AuthPass        string
	LogLevel        string
	ReferenceFile   string
	MaxUploadMB     int64
	MaxSalesRecords int
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          env("PORT", "8080"),
		DBDriver:      strings.ToLower(env("DB_DRIVER", DriverSQLite)),
		DBPath:        env("DB_PATH", "./data/schemes.db"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AuthUser:      os.Getenv("AUTH_USER"),
		AuthPass:      os.Getenv("AUTH_PASS"),
		LogLevel:      env("LOG_LEVEL", "info"),
		ReferenceFile: os.Getenv("REFERENCE_FILE"),
	}

	mb, err := strconv.ParseInt(env("MAX_UPLOAD_MB", "20"), 10, 64)
	if err != nil || mb <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be a positive integer")
	}
	if mb > maxUploadMB {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must not exceed %d", maxUploadMB)
	}
	cfg.MaxUploadMB = mb

	limit, err := strconv.Atoi(env("MAX_SALES_RECORDS", "100000"))
	if err != nil || limit <= 0 {
		return nil, fmt.Errorf("MAX_SALES_RECORDS must be a positive integer")
	}
	cfg.MaxSalesRecords = limit

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DBPath
}

// MaxUploadBytes is the multipart body limit.
func (c *Config) MaxUploadBytes() int64 { return c.MaxUploadMB << 20 }

func env(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
