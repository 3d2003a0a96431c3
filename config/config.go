package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// MongoDB configuration
	MongoURI     string
	DatabaseName string

	// Server configuration
	Port string

	// Bot-to-server shared secret (machine calls)
	BotSecret string

	// Messaging platform configuration (invoice delivery)
	PlatformSendURL     string
	PlatformAccessToken string

	// Credit policy
	CreditCeiling float64

	// Chat gateway rate limiting
	RateLimitMinSpacing   time.Duration
	RateLimitWindow       time.Duration
	RateLimitMaxPerWindow int

	// Bootstrap admin account for the dashboard
	AdminUsername string
	AdminPassword string
}

func LoadConfig() *Config {
	cfg := &Config{
		MongoURI:     getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DatabaseName: getEnv("MONGO_DB_NAME", "shop_bot"),
		Port:         getEnv("PORT", "8080"),

		BotSecret: getEnv("BOT_SHARED_SECRET", ""),

		PlatformSendURL:     getEnv("PLATFORM_SEND_URL", "https://graph.facebook.com/v18.0/me/messages"),
		PlatformAccessToken: getEnv("PLATFORM_ACCESS_TOKEN", ""),

		CreditCeiling: getEnvFloat("CREDIT_CEILING", 5000000),

		RateLimitMinSpacing:   getEnvDuration("RATE_LIMIT_MIN_SPACING", 2*time.Second),
		RateLimitWindow:       getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMaxPerWindow: getEnvInt("RATE_LIMIT_MAX_PER_WINDOW", 60),

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	// Validate required configuration
	if cfg.BotSecret == "" {
		slog.Warn("BOT_SHARED_SECRET not set, bot order endpoints will reject all requests")
	}
	if cfg.PlatformAccessToken == "" {
		slog.Warn("PLATFORM_ACCESS_TOKEN not set, invoice delivery is disabled")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Invalid integer in environment, using default", "key", key)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		slog.Warn("Invalid number in environment, using default", "key", key)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Invalid duration in environment, using default", "key", key)
	}
	return defaultValue
}
