// Package usertest provides an in-process fake of the remote User Service.
//
// Server keeps users in memory, hashes passwords with bcrypt, issues HS256
// JWTs at POST /login and serves the user endpoints behind a bearer-token
// middleware on a chi router. Tests can expire every outstanding token,
// inject one-shot failures and inspect the raw requests the client sent.
// The seed record with id 1 is the protected admin that cannot be deleted.
package usertest
