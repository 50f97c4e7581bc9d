// Package config loads runtime settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/neexbeast/skycast/internal/session"
)

// Server is the configuration for cmd/server.
type Server struct {
	DatabaseURL      string
	RedisURL         string
	BearerToken      string
	Port             string
	Horizons         session.Horizons
	PlaceCacheTTL    time.Duration
	ForecastCacheTTL time.Duration
}

// Client is the configuration for cmd/skycast.
type Client struct {
	APIURL   string
	UserID   int64
	Token    string
	Horizons session.Horizons
	Fade     time.Duration
}

// loadDotEnv loads .env if present. A missing file is not an error.
func loadDotEnv(log *slog.Logger) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("loading .env failed", "err", err)
	}
}

// LoadServer reads the server configuration. DATABASE_URL, REDIS_URL and
// BEARER_TOKEN are required.
func LoadServer(log *slog.Logger) (*Server, error) {
	loadDotEnv(log)

	cfg := &Server{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		BearerToken: os.Getenv("BEARER_TOKEN"),
		Port:        getEnv("PORT", "8080"),
	}

	var missing []string
	for key, v := range map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
		"BEARER_TOKEN": cfg.BearerToken,
	} {
		if v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables not set: %v", missing)
	}

	var err error
	if cfg.Horizons, err = loadHorizons(); err != nil {
		return nil, err
	}
	if cfg.PlaceCacheTTL, err = getDuration("PLACE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ForecastCacheTTL, err = getDuration("FORECAST_CACHE_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadClient reads the terminal client configuration. Without
// SKYCAST_USER_ID and SKYCAST_TOKEN the client runs anonymously.
func LoadClient(log *slog.Logger) (*Client, error) {
	loadDotEnv(log)

	cfg := &Client{
		APIURL: getEnv("SKYCAST_API_URL", "http://localhost:8080"),
		Token:  os.Getenv("SKYCAST_TOKEN"),
	}

	if v := os.Getenv("SKYCAST_USER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SKYCAST_USER_ID: %w", err)
		}
		cfg.UserID = id
	}

	var err error
	if cfg.Horizons, err = loadHorizons(); err != nil {
		return nil, err
	}
	if cfg.Fade, err = getDuration("SKYCAST_FADE", 0); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadHorizons() (session.Horizons, error) {
	h := session.DefaultHorizons
	var err error
	if h.Authenticated, err = getInt("HORIZON_AUTH_HOURS", h.Authenticated); err != nil {
		return h, err
	}
	if h.Anonymous, err = getInt("HORIZON_ANON_HOURS", h.Anonymous); err != nil {
		return h, err
	}
	if h.Anonymous < 0 || h.Authenticated <= h.Anonymous {
		return h, fmt.Errorf("horizons must satisfy 0 <= anonymous (%d) < authenticated (%d)", h.Anonymous, h.Authenticated)
	}
	return h, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
