package config

import (
	"os"

	"github.com/joho/godotenv"
)

const (
	defaultDBPath        = "./studio.db"
	defaultPort          = "8080"
	defaultMigrationsDir = "./migrations"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath        string
	Port          string
	MigrationsDir string
	// EstimatorURL, when set, routes print-time/material estimates to an
	// external slicer service instead of the built-in heuristic.
	EstimatorURL string
	LogLevel     string
	LogFormat    string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = godotenv.Load()

	cfg := Config{
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		MigrationsDir: os.Getenv("MIGRATIONS_DIR"),
		EstimatorURL:  os.Getenv("ESTIMATOR_URL"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		LogFormat:     os.Getenv("LOG_FORMAT"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.MigrationsDir == "" {
		cfg.MigrationsDir = defaultMigrationsDir
	}

	return cfg
}
