package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	PDFBucket       string
	AssetBucket     string
	PublicURL       string
}

type PaymentConfig struct {
	KeyID     string
	KeySecret string
	// Premium upgrade price in the currency's smallest unit.
	PremiumPrice int64
	Currency     string
}

type EmailConfig struct {
	APIKey      string
	FromAddress string
	FromName    string
	FrontendURL string
}

type CacheConfig struct {
	StaleTime   time.Duration
	BaseDelay   time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
	MaxAttempts uint64
}

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	JWTIssuer   string
	CORSOrigins string
	S3          S3Config
	Payment     PaymentConfig
	Email       EmailConfig
	Cache       CacheConfig
}

// Load reads configuration from the environment. Secrets the service cannot
// run without (database, JWT, payment gateway) are checked here so that a
// misconfigured deployment fails at startup instead of at request time.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        envOr("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTIssuer:   envOr("JWT_ISSUER", "flipflow"),
		CORSOrigins: envOr("CORS_ORIGINS", "http://localhost:5173"),
	}

	cfg.S3.Endpoint = os.Getenv("S3_ENDPOINT")
	cfg.S3.Region = envOr("S3_REGION", "auto")
	cfg.S3.AccessKeyID = os.Getenv("S3_ACCESS_KEY_ID")
	cfg.S3.SecretAccessKey = os.Getenv("S3_SECRET_ACCESS_KEY")
	cfg.S3.PDFBucket = envOr("S3_PDF_BUCKET", "flipflow-pdfs")
	cfg.S3.AssetBucket = envOr("S3_ASSET_BUCKET", "flipflow-assets")
	cfg.S3.PublicURL = os.Getenv("S3_PUBLIC_URL")

	cfg.Payment.KeyID = os.Getenv("PAYMENT_KEY_ID")
	cfg.Payment.KeySecret = os.Getenv("PAYMENT_KEY_SECRET")
	cfg.Payment.PremiumPrice = envInt64Or("PAYMENT_PREMIUM_PRICE", 99900)
	cfg.Payment.Currency = envOr("PAYMENT_CURRENCY", "INR")

	cfg.Email.APIKey = os.Getenv("RESEND_API_KEY")
	cfg.Email.FromAddress = envOr("EMAIL_FROM_ADDRESS", "hello@flipflow.app")
	cfg.Email.FromName = envOr("EMAIL_FROM_NAME", "FlipFlow")
	cfg.Email.FrontendURL = envOr("FRONTEND_URL", "http://localhost:5173")

	cfg.Cache.StaleTime = envDurationOr("CACHE_STALE_TIME", 30*time.Second)
	cfg.Cache.BaseDelay = envDurationOr("CACHE_RETRY_BASE_DELAY", 200*time.Millisecond)
	cfg.Cache.Multiplier = envFloatOr("CACHE_RETRY_MULTIPLIER", 2.0)
	cfg.Cache.MaxDelay = envDurationOr("CACHE_RETRY_MAX_DELAY", 5*time.Second)
	cfg.Cache.MaxAttempts = envUint64Or("CACHE_RETRY_MAX_ATTEMPTS", 3)

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if cfg.Payment.KeySecret == "" {
		return nil, errors.New("PAYMENT_KEY_SECRET is not set")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envUint64Or(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
