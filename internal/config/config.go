package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv             string
	LogLevel           string
	AppPort            string
	AllowedOrigin      string
	BackendURL         string
	BackendTimeout     time.Duration
	LookupDebounce     time.Duration
	LookupLimit        int
	SessionTTL         time.Duration
	MaxDiscountPercent float64
}

const (
	defaultAppPort            = "8080"
	defaultAllowedOrigin      = "http://localhost:3000"
	defaultBackendTimeout     = 15 * time.Second
	defaultLookupDebounce     = 150 * time.Millisecond
	defaultLookupLimit        = 5
	defaultSessionTTL         = 30 * time.Minute
	defaultMaxDiscountPercent = 100
)

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:             os.Getenv("APP_ENV"),
		LogLevel:           os.Getenv("LOG_LEVEL"),
		AppPort:            envOr("APP_PORT", defaultAppPort),
		AllowedOrigin:      envOr("CORS_ALLOWED_ORIGIN", defaultAllowedOrigin),
		BackendURL:         os.Getenv("BACKEND_URL"),
		BackendTimeout:     durationOr("BACKEND_TIMEOUT", defaultBackendTimeout),
		LookupDebounce:     durationOr("LOOKUP_DEBOUNCE", defaultLookupDebounce),
		LookupLimit:        intOr("LOOKUP_LIMIT", defaultLookupLimit),
		SessionTTL:         durationOr("SESSION_TTL", defaultSessionTTL),
		MaxDiscountPercent: floatOr("MAX_DISCOUNT_PERCENT", defaultMaxDiscountPercent),
	}

	if cfg.BackendURL == "" {
		log.Fatal("Environment variables not loaded properly: BACKEND_URL is required")
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOr accepts Go durations ("300ms") or a bare number of milliseconds.
func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	log.Printf("invalid %s=%q, using %s", key, v, fallback)
	return fallback
}

func intOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func floatOr(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		log.Printf("invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}
