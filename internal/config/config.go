package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Mode        string
	FrontendURL string
	APIBaseURL  string

	// Database configuration
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	// Redis configuration
	RedisURL string

	// RabbitMQ configuration
	RabbitMQURL    string
	EventsExchange string

	// Brevo email configuration
	BrevoAPIKey    string
	BrevoFromEmail string
	BrevoFromName  string

	// Auth configuration
	JWTSecret               string
	JWTExpiresHours         int
	AuthLockMinutes         int
	ActivationTokenTTLHours int
	PasswordResetTTLMinutes int
	RateLimitMinutes        int

	// Referral configuration
	ReferralDiscountAmount float64
	ReferralDiscountDays   int
}

// TrialDays is the length of the free trial. It is not configurable.
const TrialDays = 7

// SettlementConfig carries the knobs used when a subscription is settled.
type SettlementConfig struct {
	DiscountAmount    float64
	DiscountValidDays int
	TrialDays         int
}

// DefaultSettlementConfig returns the settlement defaults.
func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		DiscountAmount:    2.0,
		DiscountValidDays: 30,
		TrialDays:         TrialDays,
	}
}

// AuthConfig carries the knobs used by registration and login.
type AuthConfig struct {
	JWTSecret               string
	JWTExpiresHours         int
	LockMinutes             int
	ActivationTokenTTLHours int
	PasswordResetTTLMinutes int
	RateLimitMinutes        int
	FrontendURL             string
	APIBaseURL              string
}

var AppConfig *Config

func InitConfig() (*Config, error) {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = Load()
	return AppConfig, nil
}

// Load reads the configuration from the environment without touching .env files.
func Load() *Config {
	databaseURL := getEnv("DATABASE_URL", "")
	defaultDriver := "sqlite"
	if databaseURL != "" {
		defaultDriver = "postgres"
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Mode:                    getEnv("GIN_MODE", "debug"),
		FrontendURL:             strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		APIBaseURL:              strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		DatabaseDriver:          strings.ToLower(getEnv("DATABASE_DRIVER", defaultDriver)),
		DatabaseURL:             databaseURL,
		SQLitePath:              getEnv("SQLITE_PATH", "streamflix.db"),
		RedisURL:                getEnv("REDIS_URL", ""),
		RabbitMQURL:             getEnv("RABBITMQ_URL", ""),
		EventsExchange:          getEnv("EVENTS_EXCHANGE", "streamflix.events"),
		BrevoAPIKey:             getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:          getEnv("BREVO_FROM_EMAIL", "no-reply@streamflix.local"),
		BrevoFromName:           getEnv("BREVO_FROM_NAME", "StreamFlix"),
		JWTSecret:               getEnv("JWT_SECRET", "change-me"),
		JWTExpiresHours:         getEnvInt("JWT_EXPIRES_HOURS", 24),
		AuthLockMinutes:         getEnvInt("AUTH_LOCK_MINUTES", 15),
		ActivationTokenTTLHours: getEnvInt("ACTIVATION_TOKEN_TTL_HOURS", 24),
		PasswordResetTTLMinutes: getEnvInt("PASSWORD_RESET_TTL_MINUTES", 60),
		RateLimitMinutes:        getEnvInt("RATE_LIMIT_MINUTES", 1),
		ReferralDiscountAmount:  getEnvFloat("REFERRAL_DISCOUNT_AMOUNT", 2.0),
		ReferralDiscountDays:    getEnvInt("REFERRAL_DISCOUNT_DAYS", 30),
	}
}

// Settlement returns the settlement knobs derived from the configuration.
func (c *Config) Settlement() SettlementConfig {
	return SettlementConfig{
		DiscountAmount:    c.ReferralDiscountAmount,
		DiscountValidDays: c.ReferralDiscountDays,
		TrialDays:         TrialDays,
	}
}

// Auth returns the authentication knobs derived from the configuration.
func (c *Config) Auth() AuthConfig {
	return AuthConfig{
		JWTSecret:               c.JWTSecret,
		JWTExpiresHours:         c.JWTExpiresHours,
		LockMinutes:             c.AuthLockMinutes,
		ActivationTokenTTLHours: c.ActivationTokenTTLHours,
		PasswordResetTTLMinutes: c.PasswordResetTTLMinutes,
		RateLimitMinutes:        c.RateLimitMinutes,
		FrontendURL:             c.FrontendURL,
		APIBaseURL:              c.APIBaseURL,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue >= 0 {
			return floatValue
		}
	}
	return defaultValue
}
