// Package config loads runtime configuration for the usermgr client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables, optionally read from a dotenv file. The file is
//     ./.env unless -env names another one; variables already set in the
//     process environment win over the file.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string     base URL of the User Service
//	-t duration   per-request timeout, e.g. 5s
//	-d string     path of the local SQLite database
//	-l string     log level (debug, info, warn, error)
//
// Environment
//
//	USERMGR_SERVER_URL, USERMGR_REQUEST_TIMEOUT, USERMGR_DB_PATH, LOG_LEVEL
//
// # JSON schema
//
// Durations are strings like "3s" or integer nanoseconds. Missing keys keep
// the previous value.
//
//	{
//	  "server_base_url": "http://localhost:8080",
//	  "request_timeout": "10s",
//	  "database_path": "usermgr.db",
//	  "log_level": "info"
//	}
package config
