package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"mediahub/chat-center/utils"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Chat store configuration
	ChatDataPath  string
	MaxMessages   int
	OnlineTimeout time.Duration

	// Redis configuration (optional; empty means in-memory presence)
	RedisURL string
}

func LoadConfig(logger *utils.Logger) *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	onlineTimeout := getEnvAsInt("ONLINE_TIMEOUT_SECONDS", 300, logger)

	return &Config{
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		ChatDataPath:  getEnv("CHAT_DATA_PATH", "data/chat_messages.json"),
		MaxMessages:   getEnvAsInt("MAX_MESSAGES", 100, logger),
		OnlineTimeout: time.Duration(onlineTimeout) * time.Second,

		RedisURL: getEnv("REDIS_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses a positive integer env var. A malformed or
// non-positive value is never fatal: it is logged and the default is kept.
func getEnvAsInt(key string, defaultValue int, logger *utils.Logger) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		logger.Warn("Invalid integer config value, keeping default",
			"key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return parsed
}
