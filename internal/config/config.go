package config

import (
	"fmt"
	"time"

	"memory_game/internal/logger"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Letters source kinds.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

type Config struct {
	AppPort   string `env:"APP_PORT" envDefault:"8080"`
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// Optional backends. Empty values disable them.
	DatabaseURL   string `env:"DATABASE_URL"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	LettersSource   string        `env:"LETTERS_SOURCE" envDefault:"file"`
	LettersPath     string        `env:"LETTERS_PATH" envDefault:"public/data/letters.json"`
	LettersURL      string        `env:"LETTERS_URL"`
	LettersCacheTTL time.Duration `env:"LETTERS_CACHE_TTL" envDefault:"10m"`
	StaticDir       string        `env:"STATIC_DIR" envDefault:"public"`

	AllowedOrigin string `env:"ALLOWED_ORIGIN"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON       bool   `env:"LOG_JSON" envDefault:"false"`

	APIRateLimit        int           `env:"API_RATE_LIMIT" envDefault:"120"`
	APIRateWindow       time.Duration `env:"API_RATE_WINDOW" envDefault:"1m"`
	SelectRatePerMinute int           `env:"SELECT_RATE_PER_MINUTE" envDefault:"240"`

	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	SessionTokenTTL time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"2h"`
}

// Parse reads .env (if present) and the environment into a Config.
func Parse() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load is Parse that exits the process on error.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	return cfg
}

func (c *Config) validate() error {
	switch c.LettersSource {
	case SourceFile:
		if c.LettersPath == "" {
			return fmt.Errorf("LETTERS_PATH is required for the %s source", SourceFile)
		}
	case SourceHTTP:
		if c.LettersURL == "" {
			return fmt.Errorf("LETTERS_URL is required for the %s source", SourceHTTP)
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s source", SourcePostgres)
		}
	default:
		return fmt.Errorf("unknown LETTERS_SOURCE %q", c.LettersSource)
	}
	if c.APIRateLimit <= 0 || c.APIRateWindow <= 0 {
		return fmt.Errorf("API_RATE_LIMIT and API_RATE_WINDOW must be positive")
	}
	if c.SessionTTL <= 0 || c.SessionTokenTTL <= 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_TOKEN_TTL must be positive")
	}
	return nil
}
