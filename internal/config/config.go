package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL      string
	DatabaseMaxConns int

	// Redis
	RedisURL string

	// JWT
	JWTSecret string

	// Gemini AI
	GeminiAPIKey         string
	GeminiConcurrentReqs int

	// Blob storage (GCS signed POST uploads)
	StorageBucket     string
	StorageAccessID   string
	StoragePrivateKey string

	// Google Translate
	TranslateAPIKey string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string

	// Plan limits
	FreeDailyLimit int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8080"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		DatabaseMaxConns:     getEnvAsIntOrDefault("DATABASE_MAX_CONNS", 25),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		GeminiAPIKey:         mustGetEnv("GEMINI_API_KEY"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		StorageBucket:        getEnvOrDefault("STORAGE_BUCKET", ""),
		StorageAccessID:      getEnvOrDefault("STORAGE_ACCESS_ID", ""),
		StoragePrivateKey:    getEnvOrDefault("STORAGE_PRIVATE_KEY", ""),
		TranslateAPIKey:      getEnvOrDefault("TRANSLATE_API_KEY", ""),
		StripeSecretKey:      getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:  getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:        getEnvOrDefault("STRIPE_PRICE_ID", ""),
		FreeDailyLimit:       getEnvAsIntOrDefault("FREE_DAILY_LIMIT", 1),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
