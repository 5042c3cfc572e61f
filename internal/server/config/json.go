package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/flagx"
)

// jsonConfig is the file schema. Durations are strings such as "30m";
// pointers tell absent keys apart.
type jsonConfig struct {
	ListenAddr            *string `json:"listen_addr"`
	SecretKey             *string `json:"secret_key"`
	TokenValidityDuration *string `json:"token_validity_duration"`
	LoginLimit            *int    `json:"login_limit"`
	LogLevel              *string `json:"log_level"`
}

// parseJSON loads configuration values from the file named by -c or
// -config. Without the flag no file is loaded.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.ListenAddr != nil {
		config.ListenAddr = *c.ListenAddr
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.TokenValidityDuration != nil {
		d, err := time.ParseDuration(*c.TokenValidityDuration)
		if err != nil {
			return fmt.Errorf("parse config %s: token_validity_duration: %w", path, err)
		}
		config.TokenValidityDuration = d
	}
	if c.LoginLimit != nil {
		config.LoginLimit = *c.LoginLimit
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	return nil
}
