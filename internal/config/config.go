package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort   string
	DatabaseType string
	DatabasePath string
	DatabaseURL  string

	JWTSecret     string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	FrontendURL   string

	MailProvider  string
	MailFromEmail string
	MailFromName  string
	AWSRegion     string
	SMTPAddr      string
	SMTPUsername  string
	SMTPPassword  string

	AuthRateLimit int
	TrustProxy    bool
	LogLevel      string
	LogFormat     string
	Debug         bool
}

// Load reads configuration from a .env file (if present) and environment
// variables with sensible defaults
func Load() *Config {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	return &Config{
		ServerPort:   getEnv("PORT", "3000"),
		DatabaseType: getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath: getEnv("DB_PATH", "./cashvelo.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		SessionTTL:    getDuration("SESSION_TTL", 7*24*time.Hour),
		ResetTokenTTL: getDuration("RESET_TOKEN_TTL", time.Hour),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),

		MailProvider:  strings.ToLower(getEnv("MAIL_PROVIDER", "")),
		MailFromEmail: getEnv("MAIL_FROM_EMAIL", ""),
		MailFromName:  getEnv("MAIL_FROM_NAME", "Cashvelo"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
		SMTPAddr:      getEnv("SMTP_ADDR", ""),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),

		AuthRateLimit: getInt("AUTH_RATE_LIMIT", 10),
		TrustProxy:    getEnv("TRUST_PROXY", "false") == "true",
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		Debug:         getEnv("DEBUG", "false") == "true",
	}
}

// Validate reports settings the server cannot start without
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not defined")
	}
	switch strings.ToLower(c.DatabaseType) {
	case "postgres", "postgresql", "pgx", "mysql":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for " + c.DatabaseType)
		}
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
