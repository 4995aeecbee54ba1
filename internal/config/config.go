package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	AuthJWTSecret       string
	AuthTokenTTLSeconds int64

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	StripeSecretKey     string
	StripeWebhookSecret string
	StripeAPIBaseURL    string

	PayPalMode          string
	PayPalClientID      string
	PayPalClientSecret  string
	PayPalWebhookID     string
	PayPalReturnURLBase string
	PayPalAPIBaseURL    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SeedDemoData bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:             getenv("APP_SERVICE", "doula-life"),
		AppVersion:          getenv("APP_VERSION", "0.1.0"),
		Environment:         getenv("ENVIRONMENT", "development"),
		AuthJWTSecret:       strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),
		AuthTokenTTLSeconds: getenvInt64("AUTH_TOKEN_TTL_SECONDS", 3600),
		OTLPEndpoint:        getenv("OTLP_ENDPOINT", "localhost:4317"),
		DBType:              getenv("DATABASE_TYPE", "postgres"),
		DBHost:              getenv("DATABASE_HOST", "localhost"),
		DBPort:              getenv("DATABASE_PORT", "5432"),
		DBName:              getenv("DATABASE_NAME", "doula_life"),
		DBUser:              getenv("DATABASE_USER", "postgres"),
		DBPassword:          getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:           getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:       int(getenvInt64("DATABASE_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:       int(getenvInt64("DATABASE_MAX_OPEN_CONN", 15)),
		DBConnMaxLifetime:   int(getenvInt64("DATABASE_CONN_MAX_LIFETIME", 300)),
		StripeSecretKey:     strings.TrimSpace(getenv("STRIPE_SECRET_KEY", "")),
		StripeWebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),
		StripeAPIBaseURL:    strings.TrimSpace(getenv("STRIPE_API_BASE_URL", "https://api.stripe.com")),
		PayPalMode:          normalizePayPalMode(getenv("PAYPAL_MODE", PayPalModeSandbox)),
		PayPalClientID:      strings.TrimSpace(getenv("PAYPAL_CLIENT_ID", "")),
		PayPalClientSecret:  strings.TrimSpace(getenv("PAYPAL_CLIENT_SECRET", "")),
		PayPalWebhookID:     strings.TrimSpace(getenv("PAYPAL_WEBHOOK_ID", "")),
		PayPalReturnURLBase: strings.TrimSpace(getenv("PAYPAL_RETURN_URL_BASE", "")),
		PayPalAPIBaseURL:    strings.TrimSpace(getenv("PAYPAL_API_BASE_URL", "")),
		RedisAddr:           strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:       getenv("REDIS_PASSWORD", ""),
		RedisDB:             int(getenvInt64("REDIS_DB", 0)),
		SeedDemoData:        getenvBool("SEED_DEMO_DATA", false),
	}

	return cfg
}

const (
	PayPalModeSandbox = "sandbox"
	PayPalModeLive    = "live"
)

// PayPalBaseURL resolves the REST API host for the configured mode. An
// explicit PAYPAL_API_BASE_URL wins over the mode mapping.
func (c Config) PayPalBaseURL() string {
	if c.PayPalAPIBaseURL != "" {
		return c.PayPalAPIBaseURL
	}
	if c.PayPalMode == PayPalModeLive {
		return "https://api.paypal.com"
	}
	return "https://api.sandbox.paypal.com"
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizePayPalMode(raw string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case PayPalModeLive:
		return PayPalModeLive
	default:
		return PayPalModeSandbox
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
