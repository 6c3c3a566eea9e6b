package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the service reads from the environment: the HTTP
// listen address, the two Tuya credential pairs (cloud project keys for device
// and session calls, app keys for the OAuth code exchange), and session wiring.
type Config struct {
	Addr        string
	Environment string

	TuyaBaseURL     string
	CloudClientID   string
	CloudSecret     string
	AppClientID     string
	AppSecret       string
	CountryCode     string
	Schema          string
	AppURL          string
	SessionSecret   string
	RedisURL        string
	ShutdownTimeout time.Duration
}

// Load builds a Config from environment variables so main stays lean. A local
// .env file is honored when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Addr:            getenv("ADDR", ":3001"),
		Environment:     getenv("ENVIRONMENT", "development"),
		TuyaBaseURL:     getenv("TUYA_BASE_URL", "https://openapi.tuyaeu.com"),
		CloudClientID:   os.Getenv("TUYA_CLIENT_ID"),
		CloudSecret:     os.Getenv("TUYA_CLIENT_SECRET"),
		AppClientID:     os.Getenv("TUYA_APP_CLIENT_ID"),
		AppSecret:       os.Getenv("TUYA_APP_CLIENT_SECRET"),
		CountryCode:     getenv("TUYA_COUNTRY_CODE", "49"),
		Schema:          getenv("TUYA_SCHEMA", "smartlife"),
		AppURL:          getenv("APP_URL", "http://localhost:3001"),
		SessionSecret:   getenv("SESSION_SECRET", "dev-secret-change-in-production"),
		RedisURL:        os.Getenv("REDIS_URL"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
