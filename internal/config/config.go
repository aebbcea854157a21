package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	SMS      SMSConfig
	Razorpay RazorpayConfig
	Stripe   StripeConfig
	Booking  BookingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// SMSConfig holds SMS provider configuration. In dev mode no real SMS is
// sent; the notifier reports a simulated send instead.
type SMSConfig struct {
	Mode     string // "dev" or "production"
	APIURL   string
	AuthKey  string
	SenderID string
	Route    string
}

// RazorpayConfig holds the pull-style gateway credentials. KeySecret is
// server-only: it signs order verification and must never reach a client.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// StripeConfig holds the push-style gateway credentials and checkout URLs
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// BookingConfig holds booking lifecycle policy
type BookingConfig struct {
	DefaultCurrency string
	// PendingTTL is how long an unpaid booking may linger before the
	// expiry sweep cancels it
	PendingTTL time.Duration
	// SweepSchedule is a cron expression (with seconds) for the sweep job
	SweepSchedule string
	// ReconcileSchedule is a cron expression (with seconds) for the
	// amount-mismatch reconciliation report
	ReconcileSchedule string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 3600)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization", "Stripe-Signature"}),
		},
		SMS: SMSConfig{
			Mode:     getEnv("SMS_MODE", "dev"),
			APIURL:   getEnv("SMS_API_URL", "https://api.msg91.com/api/v2/sendsms"),
			AuthKey:  getEnv("SMS_AUTH_KEY", ""),
			SenderID: getEnv("SMS_SENDER_ID", "VOYAGO"),
			Route:    getEnv("SMS_ROUTE", "4"),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "https://voyago.in/booking/success"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "https://voyago.in/booking/cancelled"),
		},
		Booking: BookingConfig{
			DefaultCurrency:   getEnv("BOOKING_CURRENCY", "INR"),
			PendingTTL:        time.Duration(getEnvAsInt("BOOKING_PENDING_TTL_MINUTES", 1440)) * time.Minute,
			SweepSchedule:     getEnv("BOOKING_SWEEP_SCHEDULE", "0 */15 * * * *"),
			ReconcileSchedule: getEnv("BOOKING_RECONCILE_SCHEDULE", "0 0 * * * *"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}

	// Stripe is optional (card checkout disabled without it) but a secret
	// key without a webhook secret means completions could never be
	// verified, so reject the half-configured state.
	if c.Stripe.SecretKey != "" && c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set")
	}

	if c.SMS.Mode == "production" && c.SMS.AuthKey == "" {
		return fmt.Errorf("SMS_AUTH_KEY is required in production SMS mode")
	}

	if c.Booking.PendingTTL < time.Minute {
		return fmt.Errorf("BOOKING_PENDING_TTL_MINUTES must be at least 1")
	}

	return nil
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
