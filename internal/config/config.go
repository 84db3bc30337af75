package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	JWTSecret  string

	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURL         string

	CloudinaryURL string

	// Like economy policy. Monetary values are pence (minor units).
	Currency            string
	LikeBundleSize      int
	LikeBundlePrice     int64
	PayoutPerLike       int64
	PayoutThreshold     int64
	FreeLikeCap         int
	AccrualWindowSecs   int
	AccrualToleranceSec int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	env := getEnv("ENV", "development")

	var dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode string
	if env == "production" {
		dbHost = getEnv("DB_HOST", "")
		dbPort = getEnv("DB_PORT", "5432")
		dbUser = getEnv("DB_USER", "")
		dbPassword = getEnv("DB_PASSWORD", "")
		dbName = getEnv("DB_NAME", "")
		dbSSLMode = getEnv("DB_SSLMODE", "require")
	} else {
		dbHost = getEnv("DB_HOST", "localhost")
		dbPort = getEnv("DB_PORT", "5432")
		dbUser = getEnv("DB_USER", "postgres")
		dbPassword = getEnv("DB_PASSWORD", "password")
		dbName = getEnv("DB_NAME", "songchart")
		dbSSLMode = getEnv("DB_SSLMODE", "disable")
	}

	cfg := &Config{
		DBHost:     dbHost,
		DBPort:     dbPort,
		DBUser:     dbUser,
		DBPassword: dbPassword,
		DBName:     dbName,
		DBSSLMode:  dbSSLMode,

		ServerPort: getEnv("SERVER_PORT", "8080"),
		JWTSecret:  getEnv("JWT_SECRET", "default-jwt-secret-change-in-production"),

		StripeSecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),

		CloudinaryURL: getEnv("CLOUDINARY_URL", ""),

		Currency:            getEnv("LIKE_CURRENCY", "gbp"),
		LikeBundleSize:      getEnvInt("LIKE_BUNDLE_SIZE", 10),
		LikeBundlePrice:     getEnvInt64("LIKE_BUNDLE_PRICE", 150),
		PayoutPerLike:       getEnvInt64("PAYOUT_PER_LIKE", 10),
		PayoutThreshold:     getEnvInt64("PAYOUT_THRESHOLD", 2000),
		FreeLikeCap:         getEnvInt("FREE_LIKE_CAP", 100),
		AccrualWindowSecs:   getEnvInt("ACCRUAL_WINDOW_SECONDS", 60),
		AccrualToleranceSec: getEnvInt("ACCRUAL_TOLERANCE_SECONDS", 3),
	}

	if cfg.StripeSecretKey == "" {
		log.Println("⚠️ Stripe API credentials not set, payment features disabled")
	}

	return cfg, nil
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
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
