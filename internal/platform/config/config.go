// Package config lee la configuración del proceso desde variables de entorno.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Store string

const (
	StoreMemory   Store = "memory"
	StorePostgres Store = "postgres"
	StoreSQLite   Store = "sqlite"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Listing ListingConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (s ServerConfig) Addr() string {
	return ":" + s.Port
}

type StorageConfig struct {
	// Store vacío: postgres si hay DB_DSN, si no memory.
	Store      Store
	DSN        string
	SQLitePath string
}

type ListingConfig struct {
	DefaultPageSize int
	MaxPageSize     int
}

type LogConfig struct {
	Level  string
	Format string
	App    string
}

func Load() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 5*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Store:      Store(strings.ToLower(getEnv("STORE", ""))),
			DSN:        getEnv("DB_DSN", ""),
			SQLitePath: getEnv("SQLITE_PATH", "foster-tracker.db"),
		},
		Listing: ListingConfig{
			DefaultPageSize: getEnvAsInt("DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:     getEnvAsInt("MAX_PAGE_SIZE", 100),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			App:    getEnv("APP_NAME", "foster-tracker"),
		},
	}

	if cfg.Storage.Store == "" {
		cfg.Storage.Store = StoreMemory
		if cfg.Storage.DSN != "" {
			cfg.Storage.Store = StorePostgres
		}
	}
	if cfg.Listing.DefaultPageSize <= 0 {
		cfg.Listing.DefaultPageSize = 20
	}
	if cfg.Listing.MaxPageSize < cfg.Listing.DefaultPageSize {
		cfg.Listing.MaxPageSize = cfg.Listing.DefaultPageSize
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
