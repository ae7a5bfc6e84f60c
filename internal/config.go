package internal

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Devserver DevserverConfig `mapstructure:"devserver"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	DashboardDays  int           `mapstructure:"dashboard_days"`
}

type DevserverConfig struct {
	Port         int           `mapstructure:"port"`
	TokenSecret  string        `mapstructure:"token_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	Seed         bool          `mapstructure:"seed"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Env    string `mapstructure:"env"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Defaults returns a configuration usable without any config file, pointed
// at a local devserver.
func Defaults() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8080/api/v1",
			RequestTimeout: 30 * time.Second,
			DashboardDays:  30,
		},
		Devserver: DevserverConfig{
			Port:         8080,
			TokenSecret:  "local-dev-only-secret",
			TokenTTL:     12 * time.Hour,
			Seed:         true,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Logging: LoggingConfig{
			Env:    "development",
			Level:  "debug",
			Format: "text",
		},
	}
}

func (c *Config) Validate() error {
	var errs []string

	if err := c.API.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("api config: %v", err))
	}

	if err := c.Devserver.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("devserver config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *APIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %s: %w", c.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be http or https, got %q", u.Scheme)
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout cannot be negative")
	}
	return nil
}

func (c *DevserverConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.TokenSecret == "" {
		return errors.New("token_secret is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	return nil
}
