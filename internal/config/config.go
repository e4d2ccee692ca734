// Package config loads runtime configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration.
type Config struct {
	Port   string
	DBPath string

	// RefreshMinutes seeds the freshness interval for a fresh database;
	// after that the stored setting wins.
	RefreshMinutes int

	// CronSpec controls how often the scheduler offers a refresh. The
	// freshness policy decides whether a tick actually fetches.
	CronSpec string

	HTTPTimeout time.Duration
}

// Load reads configuration from a .env file (if present) and the
// environment.
func Load() *Config {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("THREATIQ_PORT", "8080"),
		DBPath:         getEnv("THREATIQ_DB_PATH", "./threatiq.db"),
		RefreshMinutes: getEnvAsInt("THREATIQ_REFRESH_MINUTES", 30),
		CronSpec:       getEnv("THREATIQ_CRON_SPEC", "*/5 * * * *"),
		HTTPTimeout:    time.Duration(getEnvAsInt("THREATIQ_HTTP_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	log.Printf("config loaded: port=%s db=%s refresh=%dm cron=%q",
		cfg.Port, cfg.DBPath, cfg.RefreshMinutes, cfg.CronSpec)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
