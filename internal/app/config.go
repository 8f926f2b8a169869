package app

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseFile string // Path to the SQLite database file (default: ./steptrack.db)
	Env          string // Environment (dev, staging, prod) (default: dev)
	LogLevel     string // Log level (debug, info, warn, error) (default: info)
	LogFormat    string // Log format (json, text) (default: json)

	// Operator credentials for this invocation. Gated commands log in with
	// these before running.
	Username string
	Password string

	// Initial admin, provisioned only when the accounts table is empty.
	BootstrapUsername string
	BootstrapPassword string
}

func LoadConfig() Config {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		DatabaseFile:      getEnvOrDefault("STEPTRACK_DATABASE_FILE", "steptrack.db"),
		Env:               getEnvOrDefault("ENV", "dev"),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         getEnvOrDefault("LOG_FORMAT", "json"),
		Username:          os.Getenv("STEPTRACK_USERNAME"),
		Password:          os.Getenv("STEPTRACK_PASSWORD"),
		BootstrapUsername: os.Getenv("STEPTRACK_BOOTSTRAP_USERNAME"),
		BootstrapPassword: os.Getenv("STEPTRACK_BOOTSTRAP_PASSWORD"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
