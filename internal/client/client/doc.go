// Package client talks to the remote User Service.
//
// # Overview
//
// The package provides:
//  1. The transport-agnostic Client contract: Login, List, Get, Create,
//     Update, Delete.
//  2. HTTPClient, the JSON-over-HTTP implementation. It attaches the bearer
//     token and a per-request X-Request-ID, bounds every call with a timeout,
//     and never retries.
//  3. OpenDatabase/RunMigrations for the client's local SQLite file, which
//     holds the persisted session.
//
// # Error Handling
//
// Every failure of a round trip is an *APIError carrying the HTTP status and
// the server's message. Its class is exposed through sentinel errors that
// callers match with errors.Is: ErrUnauthorized, ErrNotFound, ErrValidation
// and ErrUnavailable. An APIError matching none of them is a generic API
// failure. Message extracts the server text for display.
//
// An empty token short-circuits to ErrUnauthorized without touching the
// network.
package client
