package config

import (
	"os"
	"strconv"
	"time"
)

type LedgerConfig struct {
	Environment       string
	Port              string
	TransferTimeout   time.Duration
	SearchResultLimit int
	IdempotencyTTL    time.Duration
}

func LoadLedgerConfig() *LedgerConfig {
	return &LedgerConfig{
		Environment:       getEnv("ENVIRONMENT", "development"),
		Port:              getEnv("PORT", "8080"),
		TransferTimeout:   getEnvAsDuration("TRANSFER_TIMEOUT", 5*time.Second),
		SearchResultLimit: getEnvAsInt("SEARCH_RESULT_LIMIT", 100),
		IdempotencyTTL:    getEnvAsDuration("IDEMPOTENCY_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultVal
}
