package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// Config holds runtime settings for the client.
type Config struct {
	ServerBaseURL  string
	RequestTimeout time.Duration
	DatabasePath   string
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080"
	c.RequestTimeout = 10 * time.Second
	c.DatabasePath = "usermgr.db"
	c.LogLevel = "info"
}

// Validate checks the values that would otherwise fail late.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerBaseURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("invalid request timeout %s", c.RequestTimeout)
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database path is empty")
	}
	return nil
}

// LoadConfig constructs a Config from defaults, JSON, environment and
// os.Args flags. Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, args, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
