package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort string
	CORSOrigin string

	RedisURL string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Global shared websocket secret. Empty means unauthenticated
	// connections are accepted (development default).
	APIKey string

	AuthAPIURL string
	AuthAPIKey string

	TokenValidationInterval time.Duration

	WSNamespace string
}

func Load() *Config {
	intervalSec, _ := strconv.Atoi(getEnv("TOKEN_VALIDATION_INTERVAL", "300"))
	if intervalSec <= 0 {
		intervalSec = 300
	}

	return &Config{
		ServerPort:              getEnv("SERVER_PORT", "8080"),
		CORSOrigin:              getEnv("CORS_ORIGIN", "*"),
		RedisURL:                getEnv("REDIS_URL", ""),
		DBHost:                  getEnv("DB_HOST", "localhost"),
		DBPort:                  getEnv("DB_PORT", "5432"),
		DBUser:                  getEnv("DB_USER", "postgres"),
		DBPassword:              getEnv("DB_PASSWORD", "postgres"),
		DBName:                  getEnv("DB_NAME", ""),
		APIKey:                  getEnv("API_KEY", ""),
		AuthAPIURL:              getEnv("AUTH_API_URL", ""),
		AuthAPIKey:              getEnv("AUTH_API_KEY", ""),
		TokenValidationInterval: time.Duration(intervalSec) * time.Second,
		WSNamespace:             getEnv("WS_NAMESPACE", "/ws/rooms"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
