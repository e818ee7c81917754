package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const devSessionSecret = "dev-secret"

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port     string
	AppEnv   string
	LogLevel string

	DBDriver    string
	DatabaseURL string
	SQLitePath  string

	SessionSecret string
	SessionTTL    time.Duration
	SessionStore  string
	RedisURL      string

	CORSOrigins []string
	BcryptCost  int
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	cfg := Config{
		Port:          fallback(os.Getenv("PORT"), "4444"),
		AppEnv:        strings.ToLower(fallback(os.Getenv("APP_ENV"), "development")),
		LogLevel:      fallback(os.Getenv("LOG_LEVEL"), "info"),
		DBDriver:      strings.ToLower(fallback(os.Getenv("DB_DRIVER"), "postgres")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SQLitePath:    fallback(os.Getenv("SQLITE_PATH"), "data/market.db"),
		SessionSecret: strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionStore:  strings.ToLower(fallback(os.Getenv("SESSION_STORE"), "memory")),
		RedisURL:      fallback(os.Getenv("REDIS_URL"), "redis://localhost:6379/0"),
		CORSOrigins:   parseCSV(fallback(os.Getenv("CORS_ALLOWED_ORIGINS"), "*")),
		SessionTTL:    positiveMinutes(os.Getenv("SESSION_TTL_MINUTES"), 24*time.Hour),
		BcryptCost:    bcryptCost(os.Getenv("BCRYPT_COST")),
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = composeDatabaseURL()
		}
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL or POSTGRES_DB is required")
		}
	case "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return Config{}, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return Config{}, errors.New("SESSION_SECRET is required in production")
		}
		cfg.SessionSecret = devSessionSecret
	}

	return cfg, nil
}

// IsProduction reports whether the server runs with production settings.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// composeDatabaseURL builds a connection string from the discrete DB_* and
// POSTGRES_* variables used by docker-compose setups.
func composeDatabaseURL() string {
	name := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if name == "" {
		return ""
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(fallback(os.Getenv("POSTGRES_USER"), "postgres"), os.Getenv("POSTGRES_PASSWORD")),
		Host:     net.JoinHostPort(fallback(os.Getenv("DB_HOST"), "localhost"), fallback(os.Getenv("DB_PORT"), "5432")),
		Path:     "/" + name,
		RawQuery: "sslmode=" + fallback(os.Getenv("DB_SSLMODE"), "disable"),
	}
	return u.String()
}

func positiveMinutes(raw string, def time.Duration) time.Duration {
	if minutes, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}
	return def
}

func bcryptCost(raw string) int {
	cost, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return bcrypt.DefaultCost
	}
	return cost
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
