package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer        string // Required: issuer claim for tokens
	JWTSecret     string // Required: HS256 signing secret (>= 32 bytes)
	VerifyBaseURL string // Public URL prefix for email verification links

	RedisAddr     string // Key-value store address (default: localhost:6379)
	RedisPassword string // Optional
	RedisDB       int    // Optional (default: 0)

	DatabaseFile string // Path to SQLite database file (default: ./fintech.db)
	PepperFile   string // Path to the password hashing pepper file (default: ./pepper)

	MailEndpoint   string // Transactional mail API endpoint; empty logs instead of sending
	MailAPIKey     string
	MailSenderName string
	MailSenderAddr string

	AccessTokenTTL  time.Duration // Access token lifetime (default: 15m)
	RefreshTokenTTL time.Duration // Refresh token / session TTL (default: 168h)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	return Config{
		Issuer:        getEnvOrDefault("FINTECH_ISSUER", "fintech-auth"),
		JWTSecret:     os.Getenv("FINTECH_JWT_SECRET"),
		VerifyBaseURL: getEnvOrDefault("FINTECH_VERIFY_BASE_URL", "http://localhost:8080/register/verify-email"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		DatabaseFile: getEnvOrDefault("FINTECH_DATABASE_FILE", "fintech.db"),
		PepperFile:   getEnvOrDefault("FINTECH_PEPPER_FILE", "pepper"),

		MailEndpoint:   os.Getenv("MAIL_ENDPOINT"),
		MailAPIKey:     os.Getenv("MAIL_API_KEY"),
		MailSenderName: getEnvOrDefault("MAIL_SENDER_NAME", "Fintech"),
		MailSenderAddr: getEnvOrDefault("MAIL_SENDER_ADDR", "no-reply@fintech.local"),

		AccessTokenTTL:  getEnvDurationOrDefault("FINTECH_ACCESS_TTL", 15*time.Minute),
		RefreshTokenTTL: getEnvDurationOrDefault("FINTECH_REFRESH_TTL", 7*24*time.Hour),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
