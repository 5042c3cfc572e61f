// Package kv is the SQLite-backed key-value table that persists the client
// session between runs. Values are plain strings; a missing key is reported
// through the boolean result of Get rather than as an error.
package kv
