// Package config loads the backend's settings from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// DatabaseURL selects the postgres store; empty means in-memory.
	DatabaseURL string
	// JWTSecret signs the host platform's extension tokens.
	JWTSecret string
	// Debug switches zap to development output.
	Debug bool
}

func Load() (Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		Addr:        getenv("OVERLAY_ADDR", ":8080"),
		DatabaseURL: os.Getenv("OVERLAY_DATABASE_URL"),
		JWTSecret:   os.Getenv("OVERLAY_JWT_SECRET"),
		Debug:       os.Getenv("OVERLAY_DEBUG") == "true",
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("OVERLAY_JWT_SECRET is required")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
