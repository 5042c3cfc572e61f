package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/usermgr/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	EnvServerURL      = "USERMGR_SERVER_URL"
	EnvRequestTimeout = "USERMGR_REQUEST_TIMEOUT"
	EnvDatabasePath   = "USERMGR_DB_PATH"
	EnvLogLevel       = "LOG_LEVEL"

	defaultEnvFile = ".env"
)

// parseEnv overlays cfg with environment variables. Values from the dotenv
// file are used only for variables that lookup does not find.
func parseEnv(cfg *Config, args []string, lookup func(string) (string, bool)) error {
	file, err := readEnvFile(flagx.EnvFilePath(args))
	if err != nil {
		return err
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}

	if v, ok := get(EnvServerURL); ok && v != "" {
		cfg.ServerBaseURL = v
	}
	if v, ok := get(EnvRequestTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	if v, ok := get(EnvDatabasePath); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := get(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// readEnvFile reads path, or ./.env when path is empty. A missing default
// file is not an error.
func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}

	vals, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return vals, nil
}
