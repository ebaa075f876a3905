package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv          string        `envconfig:"APP_ENV"`
	Port            int           `envconfig:"PORT" default:"3000"`
	SentryDSN       string        `envconfig:"SENTRY_DSN"`
	AllowOrigins    string        `envconfig:"ALLOW_ORIGINS" default:"*"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	TMDB struct {
		APIKey       string        `envconfig:"TMDB_API_KEY"`
		BaseURL      string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
		Timeout      time.Duration `envconfig:"TMDB_TIMEOUT" default:"10s"`
		Language     string        `envconfig:"TMDB_LANGUAGE"`
		IncludeAdult bool          `envconfig:"TMDB_INCLUDE_ADULT" default:"false"`
	}
	Breaker struct {
		Enabled      bool          `envconfig:"TMDB_BREAKER_ENABLED" default:"false"`
		MinRequests  uint32        `envconfig:"TMDB_BREAKER_MIN_REQUESTS" default:"10"`
		FailureRatio float64       `envconfig:"TMDB_BREAKER_FAILURE_RATIO" default:"0.6"`
		OpenTimeout  time.Duration `envconfig:"TMDB_BREAKER_OPEN_TIMEOUT" default:"1m"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}

// Validate checks the values the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.TMDB.APIKey) == "" {
		return errors.New("TMDB_API_KEY is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.TMDB.Timeout <= 0 {
		return errors.New("TMDB_TIMEOUT must be positive")
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("TMDB_BREAKER_FAILURE_RATIO %v must be in (0, 1]", c.Breaker.FailureRatio)
	}
	return nil
}

// Origins splits AllowOrigins into a list, dropping empty entries.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
