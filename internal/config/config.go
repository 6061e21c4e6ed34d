package config

import (
	"fmt"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultBackendURL is used when PYTHON_API_URL is unset
const DefaultBackendURL = "http://localhost:8000"

// Config holds the application configuration
type Config struct {
	Port            int           `env:"PORT,default=8080" validate:"min=1,max=65535"`
	BackendURL      string        `env:"PYTHON_API_URL,default=http://localhost:8000" validate:"required,url"`
	CatalogPath     string        `env:"CATALOG_PATH"`
	LogLevel        string        `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogFormat       string        `env:"LOG_FORMAT,default=json" validate:"oneof=json console"`
	SessionTTL      time.Duration `env:"SESSION_TTL,default=30m" validate:"gt=0"`
	MaxSessions     int           `env:"MAX_SESSIONS,default=1024" validate:"min=1"`
	RelatedDebounce time.Duration `env:"RELATED_DEBOUNCE,default=300ms" validate:"gte=0"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT,default=15s" validate:"gt=0"`
	Version         string
}

var validate = validator.New()

// Load reads an optional .env file, then the process environment
func Load() (Config, error) {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
