package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/usermgr/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-s string     JWT HMAC secret key
//	-t duration   token validity (e.g., "30m")
//	-r int        login attempts per minute
//	-l string     log level
//
// Other flags are filtered out with flagx.FilterArgs so they can belong to
// the JSON layer.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity")
	fs.IntVar(&config.LoginLimit, "r", config.LoginLimit, "login attempts per minute")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
