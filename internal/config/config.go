package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is not set")
	ErrUnknownDriver    = errors.New("DATABASE_DRIVER must be sqlite or postgres")
	ErrMissingDatabase  = errors.New("DATABASE_URL environment variable is not set")
)

// Config holds application configuration values loaded from environment variables.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"3000"`

	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseURL    string `env:"DATABASE_URL"    envDefault:"void.db"`

	JWTSecret  string        `env:"JWT_SECRET"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"0s"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"10"`

	AppURL             string        `env:"APP_URL"`
	GoogleClientID     string        `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string        `env:"GOOGLE_CLIENT_SECRET"`
	OAuthAuthURL       string        `env:"OAUTH_AUTH_URL"`
	OAuthTokenURL      string        `env:"OAUTH_TOKEN_URL"`
	OAuthUserInfoURL   string        `env:"OAUTH_USERINFO_URL"`
	OAuthTimeout       time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`

	CompletionAPIKey  string        `env:"COMPLETION_API_KEY"`
	CompletionBaseURL string        `env:"COMPLETION_BASE_URL"`
	CompletionModel   string        `env:"COMPLETION_MODEL"`
	CompletionTimeout time.Duration `env:"COMPLETION_TIMEOUT" envDefault:"60s"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

// LoadConfig loads configuration from environment variables.
// It looks for a .env file first, then checks actual environment variables.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file (useful for development)
	if err := godotenv.Load(); err != nil {
		slog.Warn("could not load .env file, using environment variables only", "error", err)
	}
	return Parse()
}

// Parse reads the process environment into a validated Config.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.AppURL = strings.TrimRight(strings.TrimSpace(cfg.AppURL), "/")
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	cfg.CORSAllowedOrigins = trimCSV(cfg.CORSAllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("loaded config",
		"port", cfg.HTTPPort,
		"db_driver", cfg.DatabaseDriver,
		"session_ttl", cfg.SessionTTL,
		"oauth_configured", cfg.GoogleClientID != "",
		"completion_configured", cfg.CompletionAPIKey != "",
	)
	return &cfg, nil
}

// Validate reports the first configuration problem that prevents startup.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: got %q", ErrUnknownDriver, c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return ErrMissingDatabase
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("SESSION_TTL must not be negative: %s", c.SessionTTL)
	}
	return nil
}

// OAuthRedirectURL is the callback registered with the identity provider.
func (c *Config) OAuthRedirectURL() string {
	return c.AppURL + "/auth/callback"
}

// LogLevelValue maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) LogLevelValue() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
