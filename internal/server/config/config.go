// Package config handles configuration for the stub user service,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds runtime settings for the stub user service.
//
// Fields:
//   - ListenAddr: bind address for the HTTP endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Only for local use.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - LoginLimit: login attempts allowed per minute and client address.
//   - LogLevel: slog level name ("debug", "info", "warn", "error").
type Config struct {
	ListenAddr            string
	SecretKey             string
	TokenValidityDuration time.Duration
	LoginLimit            int
	LogLevel              string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 30 * time.Minute
	c.LoginLimit = 60
	c.LogLevel = "info"
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is empty")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is empty")
	}
	if c.TokenValidityDuration <= 0 {
		return fmt.Errorf("invalid token validity %s", c.TokenValidityDuration)
	}
	if c.LoginLimit <= 0 {
		return fmt.Errorf("invalid login limit %d", c.LoginLimit)
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
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
