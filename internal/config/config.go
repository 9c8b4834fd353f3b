// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ListenAddr      string        `mapstructure:"LISTEN_ADDR"`
	GithubAPIURL    string        `mapstructure:"GITHUB_API_URL"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxSessions     int           `mapstructure:"MAX_SESSIONS"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// Every key needs a default so Unmarshal picks up its env override.
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com/")
	v.SetDefault("REQUEST_TIMEOUT", "10s")
	v.SetDefault("MAX_SESSIONS", 1024)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Load from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR is a required configuration field")
	}
	u, err := url.Parse(c.GithubAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("GITHUB_API_URL must be an absolute URL, got %q", c.GithubAPIURL)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	if c.MaxSessions <= 0 {
		return errors.New("MAX_SESSIONS must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
