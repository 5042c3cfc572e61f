package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	want := Config{
		ServerBaseURL:  "http://localhost:8080",
		RequestTimeout: 10 * time.Second,
		DatabasePath:   "usermgr.db",
		LogLevel:       "info",
	}
	assert.Empty(t, cmp.Diff(want, c))
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	base := Config{}
	base.LoadDefaults()

	bad := []func(*Config){
		func(c *Config) { c.ServerBaseURL = "localhost:8080" },
		func(c *Config) { c.ServerBaseURL = "http://" },
		func(c *Config) { c.RequestTimeout = -time.Second },
		func(c *Config) { c.DatabasePath = "" },
	}
	for _, mutate := range bad {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate())
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	jsonPath := writeTempJSON(t, "", "", map[string]any{
		"server_base_url": "http://json:1",
		"request_timeout": "2s",
		"database_path":   "json.db",
		"log_level":       "warn",
	})
	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("USERMGR_DB_PATH=envfile.db\nLOG_LEVEL=error\n"), 0o600))
	t.Setenv(EnvServerURL, "http://env:2")

	os.Args = []string{"client", "-c", jsonPath, "-env", envPath, "-l", "debug"}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	want := &Config{
		ServerBaseURL:  "http://env:2",
		RequestTimeout: 2 * time.Second,
		DatabasePath:   "envfile.db",
		LogLevel:       "debug",
	}
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoadConfig_InvalidResultRejected(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Chdir(t.TempDir())

	os.Args = []string{"client", "-a", "ftp://nope"}
	_, err := LoadConfig()
	require.Error(t, err)
}
