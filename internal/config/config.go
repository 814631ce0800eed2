package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries every setting the API server reads from the environment.
type Config struct {
	Port string

	StorageDriver string // memory | file | postgres | redis
	StorageDir    string
	DatabaseURL   string
	RedisURL      string
	RedisPrefix   string

	JWTSecret string
	TokenTTL  time.Duration
	AuthDelay time.Duration

	CORSOrigins []string
}

// Load reads .env (when present) and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("config: no .env loaded (%v), using process environment", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          getenv("APP_PORT", "8080"),
		StorageDriver: strings.ToLower(getenv("STORAGE_DRIVER", "file")),
		StorageDir:    getenv("STORAGE_DIR", "./data"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:   getenv("REDIS_PREFIX", "mascotas:"),
		JWTSecret:     getenv("JWT_SECRET", "change-me"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "http://localhost:4200")),
	}

	var err error
	if cfg.TokenTTL, err = duration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AuthDelay, err = duration("AUTH_DELAY", time.Second); err != nil {
		return nil, err
	}

	switch cfg.StorageDriver {
	case "memory", "file", "redis":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres storage driver")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key string, fallback time.Duration) (time.Duration, error) {
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

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
