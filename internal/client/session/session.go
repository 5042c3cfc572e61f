// Package session holds the signed-in state of the client: the bearer token
// and the email the user signed in with. Both values live in a key-value
// backend under the keys "token" and "userEmail", are written together at
// sign-in and removed together at logout or when the server reports the
// session as expired. No expiry is tracked locally.
package session

import (
	"context"
	"fmt"
)

const (
	KeyToken     = "token"
	KeyUserEmail = "userEmail"
)

// Backend is a string key-value store.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// batchBackend is implemented by backends that can write several keys
// atomically.
type batchBackend interface {
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// Session is a snapshot of the persisted state. The zero value means
// "signed out".
type Session struct {
	Token     string
	UserEmail string
}

// Active reports whether a token is present.
func (s Session) Active() bool { return s.Token != "" }

// Store is the only mutation point of the session. It is shared by every
// workflow; concurrent writers are last-writer-wins.
type Store struct {
	backend Backend
}

func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Load reads both keys. Absent keys yield empty fields.
func (s *Store) Load(ctx context.Context) (Session, error) {
	token, _, err := s.backend.Get(ctx, KeyToken)
	if err != nil {
		return Session{}, fmt.Errorf("load session token: %w", err)
	}
	email, _, err := s.backend.Get(ctx, KeyUserEmail)
	if err != nil {
		return Session{}, fmt.Errorf("load session email: %w", err)
	}
	return Session{Token: token, UserEmail: email}, nil
}

// Token returns the stored token or "" when signed out.
func (s *Store) Token(ctx context.Context) (string, error) {
	token, _, err := s.backend.Get(ctx, KeyToken)
	if err != nil {
		return "", fmt.Errorf("load session token: %w", err)
	}
	return token, nil
}

// Save persists both fields.
func (s *Store) Save(ctx context.Context, sess Session) error {
	values := map[string]string{KeyToken: sess.Token, KeyUserEmail: sess.UserEmail}

	if b, ok := s.backend.(batchBackend); ok {
		if err := b.SetMany(ctx, values); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		return nil
	}
	for _, k := range []string{KeyToken, KeyUserEmail} {
		if err := s.backend.Set(ctx, k, values[k]); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// Clear removes both fields.
func (s *Store) Clear(ctx context.Context) error {
	if b, ok := s.backend.(batchBackend); ok {
		if err := b.DeleteMany(ctx, KeyToken, KeyUserEmail); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	for _, k := range []string{KeyToken, KeyUserEmail} {
		if err := s.backend.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
	}
	return nil
}
